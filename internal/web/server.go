// Package web provides an HTTP status server for the counter console.
package web

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/image/draw"

	"github.com/sweeney/counter-console/internal/glyph"
	"github.com/sweeney/counter-console/internal/status"
)

// maxFrameScale bounds the ?scale= parameter of /frame.png.
const maxFrameScale = 8

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	faces      *glyph.Faces
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *status.Tracker, faces *glyph.Faces) *Server {
	s := &Server{tracker: tracker, faces: faces}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/frame.png", s.handlePNG)
	mux.HandleFunc("/frame.svg", s.handleSVG)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// handlePNG serves the last presented frame, enlarged by ?scale= (default 4).
func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	if snap.Image == nil {
		http.Error(w, "no frame presented yet", http.StatusNotFound)
		return
	}

	scale := 4
	if v := r.URL.Query().Get("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxFrameScale {
			http.Error(w, "scale must be 1-"+strconv.Itoa(maxFrameScale), http.StatusBadRequest)
			return
		}
		scale = n
	}

	var img image.Image = snap.Image
	if scale > 1 {
		b := snap.Image.Bounds()
		big := image.NewGray(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
		draw.NearestNeighbor.Scale(big, big.Bounds(), snap.Image, b, draw.Src, nil)
		img = big
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	if snap.Frame.Width == 0 {
		http.Error(w, "no frame presented yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	writeSVG(w, snap.Frame, s.faces)
}
