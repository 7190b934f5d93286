package ratelimit

import (
	"net/http"
	"time"

	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/domain"

	"go.uber.org/zap"
)

type Options struct {
	// Name identifica o estágio em logs e estatísticas ("redis", "local").
	Name    string
	Decider domain.Decider
	Stats   domain.StatsStore

	KeyFn              KeyFunc
	KeyHeader          string
	TrustXForwardedFor bool

	// Window só alimenta o RateLimit-Policy.
	Window          time.Duration
	StandardHeaders bool
	LegacyHeaders   bool

	OnReject RejectFunc
	OnError  ErrorFunc
	// FailOpen deixa passar quando o Decider falha. O padrão é fail-closed:
	// o erro vai para OnError e a cadeia para.
	FailOpen bool

	Logger *zap.Logger
	Now    func() time.Time
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Decider == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.Name == "" {
		opts.Name = "ratelimit"
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.OnReject == nil {
		opts.OnReject = plainRejection
	}
	if opts.OnError == nil {
		opts.OnError = plainError
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger.With(zap.String("limiter", opts.Name))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			dec, err := opts.Decider.Decide(r.Context(), domain.Key(key))
			if err != nil {
				// o Error fica com quem trata o erro (OnError); aqui só o contexto do limiter
				log.Warn("rate limit decision failed",
					zap.String("key", key),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Bool("fail_open", opts.FailOpen),
					zap.Error(err))
				if opts.FailOpen {
					next.ServeHTTP(w, r)
					return
				}
				opts.OnError(w, r, err)
				return
			}

			now := opts.Now()
			if opts.Stats != nil {
				ev := domain.StatsEvent{
					Limiter: opts.Name,
					Key:     domain.Key(key),
					Allowed: dec.Allowed,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      now,
				}
				if err := opts.Stats.Record(r.Context(), ev); err != nil {
					log.Debug("rate limit stats not recorded", zap.Error(err))
				}
			}

			if opts.StandardHeaders {
				setStandardHeaders(w.Header(), dec, opts.Window, now)
			}
			if opts.LegacyHeaders {
				setLegacyHeaders(w.Header(), dec)
			}

			if !dec.Allowed {
				if dec.RetryAfter > 0 {
					w.Header().Set(HeaderRetryAfter, formatSeconds(dec.RetryAfter))
				}
				log.Info("request rejected",
					zap.String("key", key),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("limit", dec.Limit))
				opts.OnReject(w, r, dec)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
