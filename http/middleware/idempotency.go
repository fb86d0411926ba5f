package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"hash"
	"io"
	"net/http"
	"sync"
)

const (
	IdempotencyHeader = "Idempotency-Key"
)

var (
	_             http.ResponseWriter = replayWriter{}
	hasherLock                        = sync.Mutex{}
	defaultCache                      = NewReplayMap()
	defaultHasher                     = sha256.New()
)

// Idempotent returns an Adapter that lets a POST endpoint be retried safely.
// GET, DELETE, PUT, & PATCH are idempotent by definition.
//
// Idempotent pulls a key (a UUID v4 string) from the Idempotency-Key request
// header to base the uniqueness of a POST request around. Account transition
// endpoints are its intended home: a timed-out approve or suspend can be
// retried with the same key without running the transition twice.
//
// If a previous request has not used that key, Idempotent pairs the request
// body, the resulting response body, and the resulting status code to the key.
//
// If that key has been used before (and has not expired),
// Idempotent falls into one of these scenarios:
//
//   - if a status code has not been set for that key, Idempotent responds
//     with 409 since the original request is still processing
//
//   - if the newly requested resource (the URI) or the new request's body
//     does not match the original, Idempotent responds with 422
//
//   - otherwise, Idempotent replays the status code and body set for the key
//
// cache and hasher can be nil; Idempotent falls back to an in-process
// ReplayMap and sha256, accordingly.
//
// Idempotent implements the draft Idempotent HTTP Header Field specification:
// https://tools.ietf.org/id/draft-idempotency-header-01.html
func Idempotent(cache ReplayCache, hasher hash.Hash) Adapter {
	if cache == nil {
		cache = defaultCache
	}

	if hasher == nil {
		hasher = defaultHasher
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}

			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}

			hasherLock.Lock()
			teeBody := bytes.NewBuffer(nil)
			check := io.TeeReader(r.Body, teeBody)
			if _, err := io.Copy(hasher, check); err != nil {
				hasherLock.Unlock()
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			r.Body = io.NopCloser(teeBody)
			sum := hasher.Sum(nil)
			hasher.Reset()
			hasherLock.Unlock()

			rep, ok := cache.Get(r.Context(), key)
			if ok {
				if rep.Status == 0 {
					w.WriteHeader(http.StatusConflict)
					return
				}

				if rep.URI != r.URL.RequestURI() || !bytes.Equal(rep.ReqSum, sum) {
					w.WriteHeader(http.StatusUnprocessableEntity)
					return
				}

				w.WriteHeader(rep.Status)
				w.Write(rep.Body.Bytes())
				return
			}

			rep = NewReplay(r.URL.RequestURI(), sum)
			cache.Set(r.Context(), key, rep)

			rw := replayWriter{
				ctx: r.Context(),
				c:   cache,
				rep: &rep,
				k:   key,
				w:   w,
			}
			handler.ServeHTTP(rw, r)
		})
	}
}

// A Replay is data from an HTTP response that can be reused
// when another request matches the same idempotency key.
type Replay struct {
	Body   *bytes.Buffer
	ReqSum []byte
	Status int
	URI    string
}

// A replayGob is an intermediate representation of a Replay
// for the purposes of gob encoding/decoding.
//
// replayGob is necessary as long as pkg gob cannot decode/encode
// fields in a Replay (e.g., Body).
type replayGob struct {
	B []byte
	R []byte
	S int
	U string
}

// NewReplay constructs a Replay for the given URI and hashed request body.
func NewReplay(uri string, reqSum []byte) Replay {
	return Replay{Body: bytes.NewBuffer(nil), URI: uri, ReqSum: reqSum}
}

// GobDecode unmarshals the gob-encoded []byte into fields of the *Replay.
//
// GobDecode implements gob.GobDecoder.
func (rep *Replay) GobDecode(b []byte) error {
	g := new(replayGob)
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(g); err != nil {
		return err
	}

	rep.Body = bytes.NewBuffer(g.B)
	rep.ReqSum, rep.Status, rep.URI = g.R, g.S, g.U
	return nil
}

// GobEncode marshals the fields of the Replay into a gob-encoded []byte.
//
// GobEncode implements gob.GobEncoder.
func (rep Replay) GobEncode() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	g := replayGob{rep.Body.Bytes(), rep.ReqSum, rep.Status, rep.URI}
	if err := gob.NewEncoder(buf).Encode(g); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// A replayWriter pairs a Replay with an http.ResponseWriter so both can be
// written to by an HTTP handler. Changes to the Replay in such a way are
// saved in the cache.
//
// A replayWriter implements http.ResponseWriter.
type replayWriter struct {
	ctx context.Context
	c   ReplayCache
	rep *Replay
	k   string
	w   http.ResponseWriter
}

// Header returns the http.Header of the underlying http.ResponseWriter.
func (rw replayWriter) Header() http.Header { return rw.w.Header() }

// Write writes the bytes to all consumers the replayWriter is concerned with.
func (rw replayWriter) Write(b []byte) (int, error) {
	select {
	case <-rw.ctx.Done():
		return 0, nil
	default:
		if rw.rep.Status == 0 {
			rw.WriteHeader(http.StatusOK)
		}

		n, err := rw.w.Write(b)
		if err != nil {
			return n, err
		}

		if _, err = rw.rep.Body.Write(b); err != nil {
			return n, err
		}

		rw.c.Set(rw.ctx, rw.k, *rw.rep)
		return n, nil
	}
}

// WriteHeader copies the status code about to be written to the *Replay
// for later reuse before actually writing the status code.
func (rw replayWriter) WriteHeader(s int) {
	select {
	case <-rw.ctx.Done():
		return
	default:
		rw.w.WriteHeader(s)
		rw.rep.Status = s
		rw.c.Set(rw.ctx, rw.k, *rw.rep)
	}
}
