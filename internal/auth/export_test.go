package auth

// SetCompare swaps the password comparison used by Login.
func (s *Service) SetCompare(compare func(hash, password []byte) error) {
	s.compare = compare
}
