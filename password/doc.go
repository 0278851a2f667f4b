// Package password hashes login passwords with argon2id and stores them in
// PHC string format. Hashes are self-describing; [Hasher.NeedsUpgrade] lets
// the login path transparently re-hash under strengthened parameters.
package password
