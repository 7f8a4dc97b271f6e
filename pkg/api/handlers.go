package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/lingua-immerse/lingua-immerse/pkg/db"
	"github.com/lingua-immerse/lingua-immerse/pkg/ingest"
	"github.com/lingua-immerse/lingua-immerse/pkg/wordtree"
)

// maxBodySize caps request bodies; texts are the largest.
const maxBodySize = 10 << 20

// MsgpackContentType is served by the word tree route when the client accepts it.
const MsgpackContentType = "application/msgpack"

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid(name, "must be a positive integer")
	}
	return id, nil
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return invalid("body", "must not be empty")
		}
		return invalid("body", "%v", err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listLanguages(w http.ResponseWriter, r *http.Request) {
	langs, err := db.ListLanguages(r.Context(), s.db)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if langs == nil {
		langs = []db.Language{}
	}
	writeJSON(w, http.StatusOK, langs)
}

type createLanguageRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (s *Server) createLanguage(w http.ResponseWriter, r *http.Request) {
	var req createLanguageRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.fail(w, r, invalid("name", "must not be empty"))
		return
	}
	id, err := db.CreateOrGetLanguage(r.Context(), s.db, req.Name, req.Code)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	// the upsert may have changed the code
	s.languages.Remove(id)
	l, err := s.language(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) listTexts(w http.ResponseWriter, r *http.Request) {
	languageID, err := pathID(r, "languageID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.language(r.Context(), languageID); err != nil {
		s.fail(w, r, err)
		return
	}
	texts, err := db.ListTexts(r.Context(), s.db, languageID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if texts == nil {
		texts = []db.Text{}
	}
	writeJSON(w, http.StatusOK, texts)
}

type createTextRequest struct {
	LanguageID int64  `json:"languageId"`
	Title      string `json:"title"`
	SourceURL  string `json:"sourceUrl"`
	Content    string `json:"content"`
}

type createTextResponse struct {
	Text  db.Text `json:"text"`
	Pages int     `json:"pages"`
}

func (s *Server) createText(w http.ResponseWriter, r *http.Request) {
	var req createTextRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.fail(w, r, invalid("title", "must not be empty"))
		return
	}
	if req.Content == "" {
		s.fail(w, r, invalid("content", "must not be empty"))
		return
	}
	l, err := s.language(r.Context(), req.LanguageID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	seg, err := s.segmenter(l)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ig := ingest.NewIngester(s.db, seg)
	ig.Logger = s.log
	if s.opts.Workers > 0 {
		ig.Workers = s.opts.Workers
	}
	if s.opts.BatchSize > 0 {
		ig.BatchSize = s.opts.BatchSize
	}
	if s.opts.PageSize > 0 {
		ig.PageSize = s.opts.PageSize
	}
	textID, pages, err := ig.ImportText(r.Context(), l.ID, req.Title, req.SourceURL, req.Content)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	text, err := db.GetText(r.Context(), s.db, textID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createTextResponse{Text: text, Pages: pages})
}

func (s *Server) listPages(w http.ResponseWriter, r *http.Request) {
	textID, err := pathID(r, "textID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := db.GetText(r.Context(), s.db, textID); err != nil {
		s.fail(w, r, err)
		return
	}
	pages, err := db.ListPages(r.Context(), s.db, textID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if pages == nil {
		pages = []db.Page{}
	}
	writeJSON(w, http.StatusOK, pages)
}

// page loads the page named by the path and checks it belongs to the text.
func (s *Server) page(r *http.Request) (db.Page, error) {
	textID, err := pathID(r, "textID")
	if err != nil {
		return db.Page{}, err
	}
	pageID, err := pathID(r, "pageID")
	if err != nil {
		return db.Page{}, err
	}
	p, err := db.GetPage(r.Context(), s.db, pageID)
	if err != nil {
		return db.Page{}, err
	}
	if p.TextID != textID {
		return db.Page{}, fmt.Errorf("page %d of text %d: %w", pageID, textID, db.ErrNotFound)
	}
	return p, nil
}

func (s *Server) getPage(w http.ResponseWriter, r *http.Request) {
	p, err := s.page(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type patchPageRequest struct {
	Content *string `json:"content"`
}

func (s *Server) patchPage(w http.ResponseWriter, r *http.Request) {
	p, err := s.page(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req patchPageRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	var edit db.PageEdit
	if req.Content != nil {
		l, err := db.PageLanguage(r.Context(), s.db, p.ID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		seg, err := s.segmenter(l)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		n := seg.CountWords(*req.Content)
		edit.Content = req.Content
		edit.WordCount = &n
	}
	p, err = db.EditPage(r.Context(), s.db, p.ID, edit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) pageWords(w http.ResponseWriter, r *http.Request) {
	p, err := s.page(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	l, err := db.PageLanguage(r.Context(), s.db, p.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.languages.Add(l.ID, l)
	e, err := s.engine(l)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tree, err := e.ComputeWordTree(r.Context(), p.Content, l.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), MsgpackContentType) {
		b, err := msgpack.Marshal(tree)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", MsgpackContentType)
		w.WriteHeader(http.StatusOK)
		w.Write(b) //nolint:errcheck
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

type putWordRequest struct {
	Content string `json:"content"`
	Status  string `json:"status"`
}

func (s *Server) putWord(w http.ResponseWriter, r *http.Request) {
	languageID, err := pathID(r, "languageID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req putWordRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	status := wordtree.StatusNew
	if req.Status != "" {
		if status, err = wordtree.ParseStatus(req.Status); err != nil {
			s.fail(w, r, invalid("status", "%v", err))
			return
		}
	}
	l, err := s.language(r.Context(), languageID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	seg, err := s.segmenter(l)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	shape, err := seg.Shape(req.Content)
	if err != nil {
		s.fail(w, r, invalid("content", "%v", err))
		return
	}
	id, err := db.UpsertWord(r.Context(), s.db, l.ID, shape, req.Content, status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	word, err := db.GetWord(r.Context(), s.db, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, word)
}

type patchWordRequest struct {
	Status string `json:"status"`
}

func (s *Server) patchWord(w http.ResponseWriter, r *http.Request) {
	wordID, err := pathID(r, "wordID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req patchWordRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	status, err := wordtree.ParseStatus(req.Status)
	if err != nil {
		s.fail(w, r, invalid("status", "%v", err))
		return
	}
	if err := db.SetWordStatus(r.Context(), s.db, wordID, status); err != nil {
		s.fail(w, r, err)
		return
	}
	word, err := db.GetWord(r.Context(), s.db, wordID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, word)
}

func (s *Server) deleteWord(w http.ResponseWriter, r *http.Request) {
	wordID, err := pathID(r, "wordID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := db.DeleteWord(r.Context(), s.db, wordID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) wordHistory(w http.ResponseWriter, r *http.Request) {
	wordID, err := pathID(r, "wordID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	history, err := db.StatusHistory(r.Context(), s.db, wordID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(history) == 0 {
		s.fail(w, r, fmt.Errorf("word %d: %w", wordID, db.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, history)
}
