package user

import (
	"github.com/marmos91/smbmanager/cmd/smbmctl/cmdutil"
	"github.com/marmos91/smbmanager/pkg/apiclient"
)

var deleteCmd = cmdutil.DeleteCommand("User", `Delete an smbm account. Samba users are not affected.

Neither the bootstrap admin nor the account you are logged in with can be
deleted.`,
	(*apiclient.Client).DeleteUser)
