package store

import "math/rand"

// codeAlphabet excludes visually similar characters (0/O, 1/I) so codes
// survive being read aloud or scribbled on paper.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

const maxCodeAttempts = 10

func randomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}
