// Package ratelimit fornece os middlewares HTTP (net/http) de controle de admissão
// da API de notas.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (janela fixa, token bucket, concorrência) sem net/http
//   - infra: contadores em memória e no Redis, token bucket, semáforo, estatísticas
//   - ratelimit (este pacote): middlewares HTTP + extração de chave + tradução para status/headers
//
// Cadeia na API:
//
//  1. limiter distribuído (Redis, por IP) - 429 com {error, message, details}
//  2. limiter local (processo inteiro, cota compartilhada) - 429 com {status:"fail", ...}
//  3. se permitido, chama o próximo handler
//
// Se o store do limiter falhar, o erro vai para Options.OnError e nenhum
// handler seguinte roda (fail-closed), a menos que Options.FailOpen esteja ligado.
package ratelimit
