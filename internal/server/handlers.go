package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/oshokin/yadisk-grabber/internal/logger"
	"github.com/oshokin/yadisk-grabber/internal/service/yadisk"
	"github.com/oshokin/yadisk-grabber/internal/utils"
)

const (
	// maxPublicURLLength is the longest public link accepted by the form.
	maxPublicURLLength = 255

	// modifiedTimeLayout formats modification times on the listing page.
	modifiedTimeLayout = "2006-01-02 15:04"

	// maxFormMemory bounds the memory used to parse a download form.
	maxFormMemory = 1 << 20
)

// Static error definitions for better error handling.
var (
	// ErrPublicURLRequired indicates an empty public_url field.
	ErrPublicURLRequired = errors.New("public url is required")
	// ErrPublicURLTooLong indicates a public_url field over the length limit.
	ErrPublicURLTooLong = errors.New("public url is too long")
)

type (
	indexPage struct {
		Title     string
		PublicURL string
		MaxLength int
		Error     string
	}

	filesPage struct {
		Title       string
		PublicURL   string
		Path        string
		Total       int
		IsRoot      bool
		ParentURL   string
		DownloadURL string
		Categories  []categoryOption
		Folders     []folderView
		Files       []fileView
	}

	categoryOption struct {
		Name     string
		Selected bool
	}

	folderView struct {
		Name string
		URL  string
	}

	fileView struct {
		Name     string
		Path     string
		Category string
		Size     string
		Modified string
	}

	downloadPage struct {
		Title      string
		OutputPath string
		BackURL    string
		Succeeded  int
		Failed     int
		Outcomes   []outcomeView
		Unmatched  []string
	}

	outcomeView struct {
		Name      string
		Status    string
		LocalPath string
		Size      string
		Error     string
	}

	errorPage struct {
		Title   string
		Message string
		BackURL string
	}

	apiError struct {
		Error string `json:"error"`
		Kind  string `json:"kind,omitempty"`
	}
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", indexPage{
		Title:     "Yandex Disk public link",
		MaxLength: maxPublicURLLength,
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)

		return
	}

	publicURL := strings.TrimSpace(r.PostForm.Get("public_url"))

	if err := validatePublicURL(publicURL); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "index.html", indexPage{
			Title:     "Yandex Disk public link",
			PublicURL: publicURL,
			MaxLength: maxPublicURLLength,
			Error:     err.Error(),
		})

		return
	}

	logger.Infof(r.Context(), "Public url received: %s", publicURL)

	http.Redirect(w, r, filesURL(publicURL, ""), http.StatusSeeOther)
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	publicURL := strings.TrimSpace(query.Get("public_url"))

	categories, err := parseCategories(query["category"])
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error(), filesURL(publicURL, query.Get("path")))

		return
	}

	listing, status, err := s.browse(r, publicURL, query.Get("path"), query.Get("refresh") == "")
	if err != nil {
		s.renderError(w, r, status, userMessage(err), "/v1/")

		return
	}

	entries := yadisk.FilterByCategory(listing.Entries, categories...)

	page := filesPage{
		Title:       listing.Name,
		PublicURL:   publicURL,
		Path:        listing.Ref.Path,
		Total:       listing.Total,
		IsRoot:      listing.Ref.IsRoot(),
		ParentURL:   filesURL(publicURL, listing.Ref.Parent().Path),
		DownloadURL: downloadURL(publicURL, listing.Ref.Path),
		Categories:  categoryOptions(categories),
	}

	for i := range entries {
		entry := &entries[i]

		if entry.IsFolder() {
			page.Folders = append(page.Folders, folderView{
				Name: entry.Name,
				URL:  filesURL(publicURL, entry.Path),
			})

			continue
		}

		file := fileView{
			Name:     entry.Name,
			Path:     entry.Path,
			Category: string(entry.Category()),
			Size:     entry.HumanSize(),
		}

		if !entry.Modified.IsZero() {
			file.Modified = entry.Modified.Format(modifiedTimeLayout)
		}

		page.Files = append(page.Files, file)
	}

	s.render(w, r, http.StatusOK, "files.html", page)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	publicURL := strings.TrimSpace(query.Get("public_url"))
	resourcePath := query.Get("path")
	backURL := filesURL(publicURL, resourcePath)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "Invalid form", http.StatusBadRequest)

		return
	}

	selectedFiles := r.PostForm["selected_files"]
	if len(selectedFiles) == 0 {
		s.renderError(w, r, http.StatusBadRequest, "Select at least one file to download.", backURL)

		return
	}

	listing, status, err := s.browse(r, publicURL, resourcePath, true)
	if err != nil {
		s.renderError(w, r, status, userMessage(err), backURL)

		return
	}

	selected, unmatched := yadisk.SelectEntries(listing, selectedFiles)

	logger.Infof(r.Context(), "Downloading %d file(s) from %s", len(selected), listing.Ref)

	outcomes := s.downloader.DownloadMany(r.Context(), listing.Ref, selected, s.cfg.OutputPath)

	page := downloadPage{
		Title:      "Download results",
		OutputPath: s.cfg.OutputPath,
		BackURL:    backURL,
		Unmatched:  unmatched,
		Outcomes:   make([]outcomeView, 0, len(outcomes)),
	}

	for i := range outcomes {
		outcome := &outcomes[i]

		view := outcomeView{
			Name:      outcome.Entry.Name,
			Status:    string(outcome.Status),
			LocalPath: outcome.LocalPath,
		}

		if outcome.Succeeded() {
			page.Succeeded++
			view.Size = outcome.Entry.HumanSize()
		} else {
			page.Failed++
			view.Error = outcome.ErrorKind.String()
		}

		page.Outcomes = append(page.Outcomes, view)
	}

	s.render(w, r, http.StatusOK, "download.html", page)
}

func (s *Server) handleAPIResources(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	categories, err := parseCategories(query["category"])
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, apiError{Error: err.Error()})

		return
	}

	listing, status, err := s.browse(r, query.Get("public_url"), query.Get("path"), query.Get("refresh") == "")
	if err != nil {
		apiErr := apiError{Error: userMessage(err)}
		if browseErr, ok := yadisk.AsBrowseError(err); ok {
			apiErr.Kind = browseErr.Kind.String()
		}

		writeJSON(w, r, status, apiErr)

		return
	}

	if len(categories) > 0 {
		filtered := *listing
		filtered.Entries = yadisk.FilterByCategory(listing.Entries, categories...)
		filtered.Total = len(filtered.Entries)
		listing = &filtered
	}

	writeJSON(w, r, http.StatusOK, listing)
}

// browse parses the reference and lists it, returning the HTTP status that matches a failure.
func (s *Server) browse(
	r *http.Request,
	publicURL, resourcePath string,
	useCache bool,
) (*yadisk.ListingResult, int, error) {
	if err := validatePublicURL(strings.TrimSpace(publicURL)); err != nil {
		return nil, http.StatusUnprocessableEntity, err
	}

	ref, err := yadisk.NewPublicResourceRef(publicURL, resourcePath)
	if err != nil {
		return nil, http.StatusUnprocessableEntity, err
	}

	listing, err := s.browser.Browse(r.Context(), ref, useCache)
	if err != nil {
		logger.Warnf(r.Context(), "Failed to browse %s: %v", ref, err)

		return nil, browseStatus(err), err
	}

	return listing, http.StatusOK, nil
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message, backURL string) {
	s.render(w, r, status, "error.html", errorPage{
		Title:   http.StatusText(status),
		Message: message,
		BackURL: backURL,
	})
}

// browseStatus maps a listing failure to an HTTP status.
func browseStatus(err error) int {
	browseErr, ok := yadisk.AsBrowseError(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch browseErr.Kind {
	case yadisk.BrowseErrorInvalidPublicKey:
		return http.StatusUnprocessableEntity
	case yadisk.BrowseErrorPathNotFound:
		return http.StatusNotFound
	case yadisk.BrowseErrorUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// userMessage returns the text shown to the user for a failure.
func userMessage(err error) string {
	if browseErr, ok := yadisk.AsBrowseError(err); ok {
		return browseErr.UserMessage()
	}

	switch {
	case errors.Is(err, ErrPublicURLRequired), errors.Is(err, ErrPublicURLTooLong):
		return err.Error()
	case errors.Is(err, yadisk.ErrEmptyPublicKey), errors.Is(err, yadisk.ErrUnsupportedLink):
		return "The public link is not a Yandex Disk link. Check the link and try again."
	default:
		return "Something went wrong. Please try again."
	}
}

func validatePublicURL(publicURL string) error {
	if publicURL == "" {
		return ErrPublicURLRequired
	}

	if utf8.RuneCountInString(publicURL) > maxPublicURLLength {
		return ErrPublicURLTooLong
	}

	return nil
}

// parseCategories accepts repeated and comma-separated category values.
func parseCategories(values []string) ([]yadisk.FileCategory, error) {
	var categories []yadisk.FileCategory

	for _, value := range values {
		for _, name := range strings.Split(value, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}

			category, err := yadisk.ParseFileCategory(name)
			if err != nil {
				return nil, err
			}

			categories = append(categories, category)
		}
	}

	return categories, nil
}

func categoryOptions(selected []yadisk.FileCategory) []categoryOption {
	return utils.Map(yadisk.AllFileCategories(), func(category yadisk.FileCategory) categoryOption {
		return categoryOption{
			Name:     string(category),
			Selected: slices.Contains(selected, category),
		}
	})
}

func filesURL(publicURL, resourcePath string) string {
	values := url.Values{}
	values.Set("public_url", publicURL)

	if resourcePath != "" && resourcePath != "/" {
		values.Set("path", resourcePath)
	}

	return "/v1/files/?" + values.Encode()
}

func downloadURL(publicURL, resourcePath string) string {
	values := url.Values{}
	values.Set("public_url", publicURL)
	values.Set("path", resourcePath)

	return "/v1/download/?" + values.Encode()
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Debugf(r.Context(), "Failed to write response: %v", err)
	}
}
