package domain

import "fmt"

// Action is a capability checked before a mutation or a privileged read.
type Action string

const (
	ActionCreateRecord   Action = "create_record"
	ActionEditRecord     Action = "edit_record"
	ActionDeleteRecord   Action = "delete_record"
	ActionCompleteRecord Action = "complete_record"
	ActionDecideRequest  Action = "decide_request"
	ActionCreateAccount  Action = "create_account"
	ActionListAccounts   Action = "list_accounts"
	ActionEditAccount    Action = "edit_account"
	ActionBlockAccount   Action = "block_account"
	ActionRemoveAccount  Action = "remove_account"
	ActionViewAudit      Action = "view_audit"
	ActionViewPresence   Action = "view_presence"
	ActionExportBackup   Action = "export_backup"
)

// capabilities is the authorization matrix. A role absent from an action's
// set is refused.
var capabilities = map[Action]map[Role]bool{
	ActionCreateRecord:   {RoleMaster: true, RoleGlobalAdmin: true, RoleUnitAdmin: true, RoleOperator: true},
	ActionCompleteRecord: {RoleMaster: true, RoleGlobalAdmin: true, RoleUnitAdmin: true, RoleOperator: true},
	ActionEditRecord:     {RoleMaster: true},
	ActionDeleteRecord:   {RoleMaster: true},
	ActionDecideRequest:  {RoleMaster: true},
	ActionCreateAccount:  {RoleMaster: true, RoleGlobalAdmin: true, RoleUnitAdmin: true},
	ActionListAccounts:   {RoleMaster: true, RoleGlobalAdmin: true, RoleUnitAdmin: true},
	ActionEditAccount:    {RoleMaster: true},
	ActionBlockAccount:   {RoleMaster: true},
	ActionRemoveAccount:  {RoleMaster: true},
	ActionViewAudit:      {RoleMaster: true},
	ActionViewPresence:   {RoleMaster: true},
	ActionExportBackup:   {RoleMaster: true},
}

// Authorize returns an ErrAuthorization-wrapped error when p may not perform
// action. It never silently allows an unknown action.
func Authorize(p Principal, action Action) error {
	if capabilities[action][p.Role] {
		return nil
	}
	return fmt.Errorf("%w: role %q may not %s", ErrAuthorization, p.Role, action)
}

// EffectiveContext resolves the unit filter applied to p. Top-level roles get
// the requested context (global when empty or unknown); everyone else is
// pinned to their home unit whatever they ask for.
func EffectiveContext(p Principal, requested ViewContext) ViewContext {
	if !p.Role.IsTopLevel() {
		return p.HomeUnit
	}
	if requested == "" || !requested.Valid() {
		return ViewGlobal
	}
	return requested
}

// InScope reports whether a record of the given unit is visible to p under
// the requested context.
func InScope(p Principal, requested ViewContext, unit Unit) bool {
	ctx := EffectiveContext(p, requested)
	if p.Role.IsTopLevel() && ctx == ViewGlobal {
		return true
	}
	return unit == ctx
}

// VisibleRecords returns the subset of records p may see under the requested
// context, preserving input order.
func VisibleRecords(p Principal, requested ViewContext, records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if InScope(p, requested, r.UnitOfOrigin) {
			out = append(out, r)
		}
	}
	return out
}

// CreationUnit decides the unit of origin for a record p creates. Only the
// master may place a record through the selected context; every other role
// writes into its home unit.
func CreationUnit(p Principal, requested ViewContext) Unit {
	if p.Role == RoleMaster && requested.Valid() {
		return requested
	}
	return p.HomeUnit
}
