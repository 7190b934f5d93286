// Package application contém os casos de uso do controle de admissão.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// FixedWindowService e TokenBucketService implementam domain.Decider;
// ConcurrencyService cuida das vagas de concorrência.
package application
