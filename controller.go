package glubblog

import "github.com/pkg/errors"

type Action string

const (
	ActionIndex      Action = "index"
	ActionTag        Action = "tag"
	ActionDate       Action = "date"
	ActionMetaWeblog Action = "metaweblog"
	ActionPostBlog   Action = "postblog"
	ActionPost       Action = "post"
	ActionEntryForm  Action = "BlogEntryForm"
)

// AllowedActions maps every action of the blog holder controller to the
// role it requires. An empty role means the action is open.
var AllowedActions = map[Action]Role{
	ActionIndex:      "",
	ActionTag:        "",
	ActionDate:       "",
	ActionMetaWeblog: "",
	ActionPostBlog:   RoleBlogManagement,
	ActionPost:       RoleBlogManagement,
	ActionEntryForm:  RoleBlogManagement,
}

// CheckAction returns ErrUnknownAction or ErrForbidden if p may not run action.
func CheckAction(action Action, p Principal) error {
	role, ok := AllowedActions[action]
	if !ok {
		return errors.Wrapf(ErrUnknownAction, "%q", action)
	}
	if role != "" && !p.Can(role) {
		return errors.Wrapf(ErrForbidden, "%q requires %s", action, role)
	}
	return nil
}
