package lifecycle

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Action is one of the fixed lifecycle operations a request can declare.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionRead   Action = "READ"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionList   Action = "LIST"
)

// Actions returns the closed set of supported actions in a stable order.
func Actions() []Action {
	return []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionList}
}

// ParseAction resolves a request's declared action name, case-insensitively.
func ParseAction(name string) (Action, error) {
	switch Action(strings.ToUpper(strings.TrimSpace(name))) {
	case ActionCreate:
		return ActionCreate, nil
	case ActionRead:
		return ActionRead, nil
	case ActionUpdate:
		return ActionUpdate, nil
	case ActionDelete:
		return ActionDelete, nil
	case ActionList:
		return ActionList, nil
	}
	return "", errors.New("unknown action: "+name, errors.CategoryBadInput).
		WithTextCode(CodeInternalFailure)
}

// String implements fmt.Stringer.
func (a Action) String() string {
	return string(a)
}

// Valid reports whether a is a member of the fixed action set.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionList:
		return true
	}
	return false
}
