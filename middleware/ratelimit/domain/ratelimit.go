package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

// Key identifica quem consome a cota (ex: IP do cliente).
type Key string

// SharedKey é a chave única usada quando todos os clientes dividem a mesma cota.
const SharedKey Key = "*"

// Decision é o resultado de uma avaliação de admissão.
type Decision struct {
	Allowed bool

	// Limit é o máximo configurado para a janela (ou o burst, no token bucket).
	Limit int
	// Remaining nunca fica negativo.
	Remaining int
	// Reset é o instante em que a janela atual termina. Pode ser zero quando
	// o algoritmo não tem janela (token bucket).
	Reset time.Time
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}

// Decider decide se uma requisição da chave `key` entra agora.
//
// Um erro significa que a decisão não pôde ser tomada (ex: store remoto fora),
// e não uma rejeição. Quem chama escolhe o que fazer com ele.
type Decider interface {
	Decide(ctx context.Context, key Key) (Decision, error)
}

// WindowCounter é um contador de janela fixa.
//
// Increment soma 1 ao contador de (key, janela atual) de forma atômica e
// retorna o valor já incrementado e o fim da janela.
// A janela atual é floor(now / window).
type WindowCounter interface {
	Increment(ctx context.Context, key Key, window time.Duration) (count int64, reset time.Time, err error)
}

// Limiter é o contrato do token bucket: decide se uma ação é permitida agora.
type Limiter interface {
	Allow() bool
	Tokens() float64
}

// LimiterStore obtém um limiter por chave (ex: IP, API key, usuário).
// A implementação pode manter cache, TTL, etc.
type LimiterStore interface {
	Get(Key) Limiter
}
