package usage

import "fmt"

// Kind is the type of generated content being metered.
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

var validKinds = map[Kind]bool{
	KindPost:    true,
	KindComment: true,
}

func (k Kind) IsValid() bool {
	return validKinds[k]
}

func (k Kind) String() string {
	return string(k)
}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}
