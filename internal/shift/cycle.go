package shift

// NextInCycle returns the assignment that follows current in the sequence
// order..., "" (unassigned), wrapping around. A current value missing from
// order, such as the id of a deleted shift type, advances to order[0].
// With an empty order the cycle is the identity.
func NextInCycle(order []string, current string) string {
	if len(order) == 0 {
		return current
	}
	seq := append(append(make([]string, 0, len(order)+1), order...), "")
	pos := -1
	for i, id := range seq {
		if id == current {
			pos = i
			break
		}
	}
	return seq[(pos+1)%len(seq)]
}
