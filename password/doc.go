// Package password implements the default one-way hash and compare
// capability used by authtools.
//
// # Output formats
//
// Argon2id hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Bcrypt hashes use the standard modular crypt format ($2a$, $2b$, $2y$).
//
// [Compare] recognises both formats, so a deployment can switch its
// [Hasher] without invalidating hashes that are already stored.
//
// Password strength rules are not enforced here; see package policy.
package password
