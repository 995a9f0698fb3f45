package domain

// Principal is an authenticated actor. It is threaded explicitly through
// every core call instead of living in global state. SessionID names the
// session it signed in with and is empty outside a session.
type Principal struct {
	Email     string `json:"email"`
	FullName  string `json:"full_name,omitempty"`
	Role      Role   `json:"role"`
	HomeUnit  Unit   `json:"home_unit"`
	SessionID string `json:"-"`
}

// ViewContext is the unit filter selected by a master or global admin.
// ViewGlobal shows every unit.
type ViewContext = Unit

const ViewGlobal ViewContext = UnitCentral
