package auth

// Authorize checks a resolved identity against an allowed role set. It is a
// pure function over its inputs: a nil identity is [ErrUnauthenticated], a
// role outside the set is [ErrForbidden], an empty set admits any
// authenticated caller.
func Authorize(identity *Identity, allowedRoles ...string) error {
	if identity == nil || identity.ID == "" {
		return ErrUnauthenticated
	}
	if len(allowedRoles) == 0 {
		return nil
	}
	for _, role := range allowedRoles {
		if identity.Role == role {
			return nil
		}
	}
	return ErrForbidden
}
