package share

import (
	"github.com/marmos91/smbmanager/cmd/smbmctl/cmdutil"
	"github.com/marmos91/smbmanager/pkg/apiclient"
)

var deleteCmd = cmdutil.DeleteCommand("Share", `Delete a share section with 'net conf delshare'.

Connected clients keep their session until they reconnect. The deletion is
recorded in the apply history like any other change.`,
	(*apiclient.Client).DeleteShare)

func init() {
	deleteCmd.Example = "  smbmctl share delete media\n  smbmctl share delete media --force"
}
