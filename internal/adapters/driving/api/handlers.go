package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driving"
	"github.com/farmlore/farmlore/internal/logger"
)

// queryRequest is the wire form of a text question. use_rag defaults
// to true when omitted.
type queryRequest struct {
	Question    string   `json:"question"`
	UseRAG      *bool    `json:"use_rag"`
	ChatHistory []string `json:"chat_history"`
	TopK        int      `json:"top_k"`
}

type queryResponse struct {
	Answer  string                  `json:"answer"`
	Sources []domain.SourceDocument `json:"sources"`
	OCRText string                  `json:"ocr_text,omitempty"`
}

type ingestRequest struct {
	Text   string `json:"text"`
	Title  string `json:"title"`
	Source string `json:"source"`
	URL    string `json:"url"`
}

type ingestResponse struct {
	ChunksWritten int `json:"chunks_written"`
}

type crawlResponse struct {
	Ingested      int `json:"ingested"`
	Skipped       int `json:"skipped"`
	Failed        int `json:"failed"`
	ChunksWritten int `json:"chunks_written"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Documents *int   `json:"documents,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	useRAG := true
	if req.UseRAG != nil {
		useRAG = *req.UseRAG
	}

	answer, err := s.ports.Answer.Query(r.Context(), driving.QueryRequest{
		Question:    req.Question,
		UseRAG:      useRAG,
		ChatHistory: req.ChatHistory,
		TopK:        req.TopK,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Answer:  answer.Text,
		Sources: sourcesOrEmpty(answer.Sources),
	})
}

func (s *Server) handleImageQuery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxImageBytes)

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: image file is required", domain.ErrInvalidInput))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read image: %w", err))
		return
	}

	useRAG := r.FormValue("use_rag") != "false"

	answer, err := s.ports.Answer.ImageQuery(r.Context(), driving.ImageQueryRequest{
		Image:    image,
		Question: r.FormValue("question"),
		UseRAG:   useRAG,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Answer:  answer.Text,
		Sources: sourcesOrEmpty(answer.Sources),
		OCRText: answer.OCRText,
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	count, err := s.ports.Ingestor.Ingest(r.Context(), driving.IngestRequest{
		Text:   req.Text,
		Title:  req.Title,
		Source: req.Source,
		URL:    req.URL,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{ChunksWritten: count})
}

func (s *Server) handleInitIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.ports.Ingestor.InitIndex(r.Context()); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	if s.ports.Crawler == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("no crawlers configured"))
		return
	}

	report, err := s.ports.Crawler.CrawlAll(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, crawlResponse{
		Ingested:      report.Ingested,
		Skipped:       report.Skipped,
		Failed:        report.Failed,
		ChunksWritten: report.ChunksWritten,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.ports.Registry != nil {
		count, err := s.ports.Registry.Count(r.Context())
		if err == nil {
			resp.Documents = &count
		} else {
			logger.Warn("Health check: document count unavailable: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// sourcesOrEmpty keeps the JSON field an array rather than null.
func sourcesOrEmpty(sources []domain.SourceDocument) []domain.SourceDocument {
	if sources == nil {
		return []domain.SourceDocument{}
	}
	return sources
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
