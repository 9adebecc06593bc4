package core

// room pairs exactly one listener with one user. Roles are fixed at
// creation and never swapped.
type room struct {
	id       string
	listener string // listener connection id
	user     string // user connection id
}

// other returns the partner of id, or false if id is not a member.
// The membership check is what keeps forged room ids from reaching anyone.
func (r *room) other(id string) (string, bool) {
	switch id {
	case r.listener:
		return r.user, true
	case r.user:
		return r.listener, true
	default:
		return "", false
	}
}
