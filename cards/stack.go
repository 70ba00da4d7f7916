package cards

// Stack represents an ordered pile of cards
type Stack []Card

// NewStack creates a new stack with the given cards
func NewStack(cards ...Card) Stack {
	return cards
}

// MustStack builds a stack from card shorthands, e.g. MustStack("As", "10h").
func MustStack(shorthands ...string) Stack {
	stack := make(Stack, 0, len(shorthands))
	for _, s := range shorthands {
		stack = append(stack, MustCard(s))
	}
	return stack
}

func (s Stack) String() string {
	var out string
	for i, c := range s {
		if i > 0 {
			out += " "
		}
		out += c.String()
	}
	return out
}

// FaceUp returns only the cards currently showing
func (s Stack) FaceUp() Stack {
	var up Stack
	for _, c := range s {
		if !c.FaceDown {
			up = append(up, c)
		}
	}
	return up
}

// Clone returns a copy of the stack
func (s Stack) Clone() Stack {
	out := make(Stack, len(s))
	copy(out, s)
	return out
}
