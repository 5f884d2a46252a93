package compiler

// Seeder derives the random-score seed for a request.
type Seeder interface {
	Seed(session string) uint32
}
