// Package magmahttp exposes the magma cipher over a small JSON HTTP API.
//
// Routes:
//
//	POST /magma/encrypt  pad and encrypt open_text, returning every round
//	POST /magma/decrypt  decrypt a list of blocks
//	GET  /magma/sbox     the server's default substitution table
//	POST /aes/encrypt    not implemented
//	POST /rsa/encrypt    not implemented
//	GET  /metrics        Prometheus metrics
package magmahttp

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"

	goerrors "github.com/go-errors/errors"
	"github.com/jedisct1/go-magma"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxBodySize is the default limit on request bodies.
	DefaultMaxBodySize = 1 << 20

	opEncrypt = "encrypt"
	opDecrypt = "decrypt"
)

// errNotImplemented is returned by the routes of the planned AES and RSA
// ciphers.
var errNotImplemented = errors.New("cipher not implemented")

// Config holds the server's settings.
type Config struct {
	// SBox is used when a request carries no table. Defaults to
	// magma.DefaultSBox.
	SBox *magma.SBox

	// Padding selects how open_text is split into blocks.
	Padding magma.PaddingMode

	// TruncateKeys reduces keys wider than 256 bits modulo 2^256 instead
	// of rejecting them.
	TruncateKeys bool

	// Workers bounds the number of blocks of one request processed
	// concurrently. Defaults to GOMAXPROCS.
	Workers int

	// MaxBodySize limits request bodies in bytes. Defaults to
	// DefaultMaxBodySize.
	MaxBodySize int64

	// Registry receives the server's metrics. A private registry is used
	// when nil.
	Registry *prometheus.Registry
}

// Server handles the HTTP API.
type Server struct {
	cfg     Config
	metrics *metrics
	mux     *http.ServeMux
}

// New creates a server, filling unset Config fields with their defaults.
func New(cfg Config) *Server {
	if cfg.SBox == nil {
		cfg.SBox = magma.DefaultSBox()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		cfg:     cfg,
		metrics: newMetrics(cfg.Registry),
		mux:     http.NewServeMux(),
	}

	s.route("POST /magma/encrypt", "magma_encrypt", s.handleEncrypt)
	s.route("POST /magma/decrypt", "magma_decrypt", s.handleDecrypt)
	s.route("GET /magma/sbox", "magma_sbox", s.handleSBox)
	s.route("POST /aes/encrypt", "aes_encrypt", s.handleNotImplemented)
	s.route("POST /rsa/encrypt", "rsa_encrypt", s.handleNotImplemented)
	s.mux.Handle("GET /metrics", s.metrics.handler())

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Server) route(pattern, name string, h handlerFunc) {
	s.mux.Handle(pattern, s.metrics.instrument(name, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if err := h(w, r); err != nil {
				s.writeError(w, r, err)
			}
		},
	)))
}

func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request) error {
	var req encryptRequest
	if err := s.decode(w, r, &req); err != nil {
		return err
	}

	c, err := s.newCipher(req.CipherKey, req.SBox)
	if err != nil {
		return err
	}

	blocks := magma.SplitBlocks([]byte(req.OpenText), s.cfg.Padding)
	cipherBlocks, traces, err := s.encryptBlocks(r.Context(), c, blocks)
	if err != nil {
		return err
	}
	s.metrics.addBlocks(opEncrypt, len(blocks))

	log.Debugf("Encrypted %d bytes into %d blocks", len(req.OpenText),
		len(blocks))

	writeJSON(w, http.StatusOK, encryptResponse{
		SecretText:   hex.EncodeToString(magma.BlocksToBytes(cipherBlocks)),
		CipherBlocks: formatBlocks(cipherBlocks),
		Blocks:       formatBlocks(blocks),
		MiddleValues: traces,
	})
	return nil
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) error {
	var req decryptRequest
	if err := s.decode(w, r, &req); err != nil {
		return err
	}

	blocks, err := parseBlocks(req.Blocks)
	if err != nil {
		return err
	}

	c, err := s.newCipher(req.CipherKey, req.SBox)
	if err != nil {
		return err
	}

	plain, err := s.decryptBlocks(r.Context(), c, blocks)
	if err != nil {
		return err
	}
	s.metrics.addBlocks(opDecrypt, len(blocks))

	log.Debugf("Decrypted %d blocks", len(blocks))

	raw := magma.BlocksToBytes(plain)
	writeJSON(w, http.StatusOK, decryptResponse{
		Blocks:   formatBlocks(plain),
		OpenHex:  hex.EncodeToString(raw),
		OpenText: string(raw),
	})
	return nil
}

func (s *Server) handleSBox(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, sboxResponse{SBox: s.cfg.SBox.Ints()})
	return nil
}

func (s *Server) handleNotImplemented(http.ResponseWriter, *http.Request) error {
	return errNotImplemented
}

// decode reads a JSON body of at most MaxBodySize bytes into v.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodySize)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

// newCipher builds a cipher from request parameters, falling back to the
// configured table.
func (s *Server) newCipher(kp keyParam, rows [][]int) (*magma.Cipher, error) {
	if kp.n == nil {
		return nil, fmt.Errorf("%w: cipher_key is required", errBadRequest)
	}

	var key magma.Key
	if s.cfg.TruncateKeys {
		key = magma.KeyFromBigTruncated(kp.n)
	} else {
		var err error
		key, err = magma.KeyFromBig(kp.n)
		if err != nil {
			return nil, err
		}
	}

	sbox := s.cfg.SBox
	if rows != nil {
		var err error
		sbox, err = magma.NewSBoxFromInts(rows)
		if err != nil {
			return nil, err
		}
	}

	return magma.NewCipher(key, sbox)
}

// encryptBlocks encrypts blocks concurrently, keeping their order.
func (s *Server) encryptBlocks(ctx context.Context, c *magma.Cipher,
	blocks []uint64) ([]uint64, []magma.Trace, error) {

	out := make([]uint64, len(blocks))
	traces := make([]magma.Trace, len(blocks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, b := range blocks {
		i, b := i, b
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i], traces[i] = c.EncryptBlock(b)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return out, traces, nil
}

// decryptBlocks decrypts blocks concurrently, keeping their order.
func (s *Server) decryptBlocks(ctx context.Context, c *magma.Cipher,
	blocks []uint64) ([]uint64, error) {

	out := make([]uint64, len(blocks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, b := range blocks {
		i, b := i, b
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = c.DecryptBlock(b)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// statusCode maps an error to the HTTP status reported to the client.
func statusCode(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, errBadRequest),
		errors.Is(err, magma.ErrInvalidSBox),
		errors.Is(err, magma.ErrInvalidKey),
		errors.Is(err, magma.ErrKeyTooLarge),
		errors.Is(err, magma.ErrNegativeKey),
		errors.Is(err, magma.ErrInvalidBlock),
		errors.Is(err, magma.ErrBlockOutOfRange):

		return http.StatusBadRequest

	case errors.Is(err, errNotImplemented):
		return http.StatusNotImplemented

	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):

		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusCode(err)
	if code == http.StatusInternalServerError {
		log.Errorf("%s %s: %s", r.Method, r.URL.Path,
			goerrors.Wrap(err, 1).ErrorStack())
	} else {
		log.Debugf("%s %s: %d %v", r.Method, r.URL.Path, code, err)
	}

	writeJSON(w, code, errorResponse{Error: err.Error()})
}

// writeJSON sends v with the given status. Once the header is out nothing can
// be reported to the client, so encoding failures are only logged.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("Unable to write response: %v", err)
	}
}
