package eazerepy

// Options is the root command that groups sub-commands. The struct tags are
// interpreted by github.com/jessevdk/go-flags.
type Options struct {
	Config  string `short:"f" long:"config" description:"config YAML path or URL"`
	Verbose bool   `short:"v" long:"verbose" description:"debug logging"`
	Version bool   `long:"version" description:"print version and exit"`

	Login     *LoginCmd     `command:"login" description:"Log in and store the session token"`
	Register  *RegisterCmd  `command:"register" description:"Create an account and log in"`
	Logout    *LogoutCmd    `command:"logout" description:"Clear the stored session"`
	Status    *StatusCmd    `command:"status" description:"Show the session state"`
	List      *ListCmd      `command:"list" description:"List your agents"`
	Show      *ShowCmd      `command:"show" description:"Show agent details"`
	Edit      *EditCmd      `command:"edit" description:"Edit an agent"`
	Delete    *DeleteCmd    `command:"delete" description:"Delete an agent"`
	Create    *CreateCmd    `command:"create" description:"Create an agent (profile and credentials in one run)"`
	Draft     *DraftCmd     `command:"draft" description:"Save the profile step of a new agent"`
	Configure *ConfigureCmd `command:"configure" description:"Add credentials to the draft and create the agent"`
	Chat      *ChatCmd      `command:"chat" description:"Chat with an agent"`
	Ver       *VersionCmd   `command:"version" description:"Print version"`
}

// Init instantiates the sub-command referenced by the first argument so that
// flags.Parse can populate its fields.
func (o *Options) Init(firstArg string) {
	switch firstArg {
	case "login":
		o.Login = &LoginCmd{}
	case "register":
		o.Register = &RegisterCmd{}
	case "logout":
		o.Logout = &LogoutCmd{}
	case "status":
		o.Status = &StatusCmd{}
	case "list":
		o.List = &ListCmd{}
	case "show":
		o.Show = &ShowCmd{}
	case "edit":
		o.Edit = &EditCmd{}
	case "delete":
		o.Delete = &DeleteCmd{}
	case "create":
		o.Create = &CreateCmd{}
	case "draft":
		o.Draft = &DraftCmd{}
	case "configure":
		o.Configure = &ConfigureCmd{}
	case "chat":
		o.Chat = &ChatCmd{}
	case "version":
		o.Ver = &VersionCmd{}
	}
}
