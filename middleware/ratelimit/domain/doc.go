// Package domain define contratos e tipos de domínio para o controle de admissão
// da API de notas: janela fixa, token bucket, concorrência e estatísticas.
//
// Este pacote não depende de net/http nem de implementações concretas, o que
// permite testar a cadeia de limiters com fakes em memória.
package domain
