package memory

import "github.com/agentry-lab/mnemosyne/pkg/domain/interfaces"

// ErrNotFound aliases the repository-wide sentinel: a record that does not
// exist, or exists but does not belong to the requesting owner.
var ErrNotFound = interfaces.ErrNotFound
