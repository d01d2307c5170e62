package http

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ismailco/phonebook/internal/phonebook/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// PhonebookService is the application surface the handler needs.
type PhonebookService interface {
	Find(ctx context.Context, keyword string) ([]*domain.Contact, error)
	Add(ctx context.Context, name, number string) (*domain.Contact, error)
	Update(ctx context.Context, name, number string) (*domain.Contact, error)
	Delete(ctx context.Context, name string) (int64, error)
}

// PhonebookHandler serves the HTML form pages. Every response is rendered
// through html/template, so user-supplied text is contextually escaped on
// the way out.
type PhonebookHandler struct {
	service   PhonebookService
	logger    *slog.Logger
	validate  *validator.Validate
	flash     *FlashCodec
	templates *template.Template
}

func NewPhonebookHandler(service PhonebookService, logger *slog.Logger, validate *validator.Validate, flash *FlashCodec) *PhonebookHandler {
	templates := template.Must(template.New("").Funcs(template.FuncMap{
		"title": titleCase,
	}).ParseFS(templateFS, "templates/*.html"))

	return &PhonebookHandler{
		service:   service,
		logger:    logger,
		validate:  validate,
		flash:     flash,
		templates: templates,
	}
}

// titleCase renders a stored (lowercased) name for display.
// cases.Caser carries state, so one is built per call.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// contactView is the template-facing shape of a contact.
type contactView struct {
	Name   string
	Number string
}

// pageData feeds all three page templates.
type pageData struct {
	Flash      string
	Keyword    string
	ShowResult bool
	Contacts   []contactView
	NotValid   bool
	Message    string
	Result     string
	ActionName string
}

// RegisterRoutes mounts the phonebook pages.
func (h *PhonebookHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.SearchPage)
	r.Post("/", h.Dispatch)
	r.Get("/add", h.AddPage)
	r.Post("/add", h.AddContact)
	r.Get("/update", h.UpdatePage)
	r.Post("/update", h.UpdateContact)
	r.Get("/delete", h.DeletePage)
	r.Post("/delete", h.DeleteContact)
	r.Get("/healthz", h.Health)
}

// Dispatch routes a POST / on its action field; a missing action means find.
func (h *PhonebookHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	switch r.PostFormValue("action") {
	case "add":
		h.AddContact(w, r)
	case "update":
		h.UpdateContact(w, r)
	case "delete":
		h.DeleteContact(w, r)
	default:
		h.FindContacts(w, r)
	}
}

func (h *PhonebookHandler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *PhonebookHandler) SearchPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index.html", pageData{Flash: h.flash.Pop(w, r)})
}

// FindContacts handles the search submission.
func (h *PhonebookHandler) FindContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form := SearchFormDTO{
		Name:   strings.TrimSpace(r.PostFormValue("name")),
		Action: r.PostFormValue("action"),
	}
	if err := h.validate.StructCtx(ctx, form); err != nil {
		h.flash.Set(w, "Please enter a search term")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	contacts, err := h.service.Find(ctx, form.Name)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			h.flash.Set(w, userMessage(err))
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.renderStoreError(w, r, "index.html", pageData{Keyword: form.Name}, err)
		return
	}

	views := make([]contactView, 0, len(contacts))
	for _, ct := range contacts {
		views = append(views, contactView{Name: ct.Name, Number: ct.Number})
	}
	// Consume any pending flash so it cannot resurface on a later visit.
	h.render(w, http.StatusOK, "index.html", pageData{
		Flash:      h.flash.Pop(w, r),
		Keyword:    form.Name,
		ShowResult: true,
		Contacts:   views,
	})
}

func (h *PhonebookHandler) AddPage(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusOK, "add_update.html", pageData{ActionName: "save"})
}

// AddContact handles the add submission.
func (h *PhonebookHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := pageData{ActionName: "save"}

	form, ok := h.decodeSaveForm(ctx, w, r, data)
	if !ok {
		return
	}

	ct, err := h.service.Add(ctx, form.Name, form.Phone)
	switch {
	case err == nil:
		data.Result = fmt.Sprintf("Person %s added to phonebook successfully", titleCase(ct.Name))
		h.render(w, http.StatusOK, "add_update.html", data)
	case errors.Is(err, domain.ErrValidation):
		data.NotValid = true
		data.Message = userMessage(err)
		h.render(w, http.StatusBadRequest, "add_update.html", data)
	case errors.Is(err, domain.ErrDuplicateEntry):
		data.Result = fmt.Sprintf("Person with name %s already exists", titleCase(domain.NormalizeName(form.Name)))
		h.render(w, http.StatusOK, "add_update.html", data)
	default:
		h.renderStoreError(w, r, "add_update.html", data, err)
	}
}

func (h *PhonebookHandler) UpdatePage(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusOK, "add_update.html", pageData{ActionName: "update"})
}

// UpdateContact handles the update submission.
func (h *PhonebookHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := pageData{ActionName: "update"}

	form, ok := h.decodeSaveForm(ctx, w, r, data)
	if !ok {
		return
	}

	ct, err := h.service.Update(ctx, form.Name, form.Phone)
	switch {
	case err == nil:
		data.Result = fmt.Sprintf("Phone record of %s is updated successfully", titleCase(ct.Name))
		h.render(w, http.StatusOK, "add_update.html", data)
	case errors.Is(err, domain.ErrValidation):
		data.NotValid = true
		data.Message = userMessage(err)
		h.render(w, http.StatusBadRequest, "add_update.html", data)
	case errors.Is(err, domain.ErrNotFound):
		data.Result = fmt.Sprintf("Person with name %s does not exist", titleCase(domain.NormalizeName(form.Name)))
		h.render(w, http.StatusOK, "add_update.html", data)
	default:
		h.renderStoreError(w, r, "add_update.html", data, err)
	}
}

func (h *PhonebookHandler) DeletePage(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusOK, "delete.html", pageData{})
}

// DeleteContact handles the delete submission.
func (h *PhonebookHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := pageData{}

	form := DeleteFormDTO{Name: strings.TrimSpace(r.PostFormValue("name"))}
	if err := h.validate.StructCtx(ctx, form); err != nil {
		data.NotValid = true
		data.Message = "name cannot be empty"
		h.render(w, http.StatusBadRequest, "delete.html", data)
		return
	}

	affected, err := h.service.Delete(ctx, form.Name)
	switch {
	case err == nil:
		data.Result = fmt.Sprintf("Deleted %d record(s) for %s", affected, titleCase(domain.NormalizeName(form.Name)))
		h.render(w, http.StatusOK, "delete.html", data)
	case errors.Is(err, domain.ErrValidation):
		data.NotValid = true
		data.Message = userMessage(err)
		h.render(w, http.StatusBadRequest, "delete.html", data)
	case errors.Is(err, domain.ErrNotFound):
		data.Result = fmt.Sprintf("Person with name %s does not exist, no need to delete", titleCase(domain.NormalizeName(form.Name)))
		h.render(w, http.StatusOK, "delete.html", data)
	default:
		h.renderStoreError(w, r, "delete.html", data, err)
	}
}

// decodeSaveForm reads and checks the add/update payload. It renders the
// error page itself and reports ok=false when the submission is unusable.
func (h *PhonebookHandler) decodeSaveForm(ctx context.Context, w http.ResponseWriter, r *http.Request, data pageData) (SaveFormDTO, bool) {
	form := SaveFormDTO{
		Name:  strings.TrimSpace(r.PostFormValue("name")),
		Phone: strings.TrimSpace(r.PostFormValue("phone")),
	}
	if err := h.validate.StructCtx(ctx, form); err != nil {
		data.NotValid = true
		data.Message = "name and phone number are required"
		h.render(w, http.StatusBadRequest, "add_update.html", data)
		return SaveFormDTO{}, false
	}
	return form, true
}

// userMessage extracts the displayable part of a validation error.
func userMessage(err error) string {
	msg := err.Error()
	if cut, ok := strings.CutPrefix(msg, domain.ErrValidation.Error()+": "); ok {
		return cut
	}
	return msg
}

// renderStoreError maps unexpected store failures to a generic page.
// Details stay in the logs; the client never sees query text or credentials.
func (h *PhonebookHandler) renderStoreError(w http.ResponseWriter, r *http.Request, page string, data pageData, err error) {
	ctx := r.Context()
	status := http.StatusInternalServerError
	data.NotValid = true
	data.Message = "Something went wrong. Please try again later."

	if isStoreUnavailable(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
		data.Message = "Service temporarily unavailable. Please try again later."
	}
	h.logger.ErrorContext(ctx, "Store operation failed", "error", err, "path", r.URL.Path)
	h.render(w, status, page, data)
}

// isStoreUnavailable reports whether err means the database could not be
// reached at all: a pool acquire timing out or the underlying dial failing.
// Query-level failures stay internal server errors.
func isStoreUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// render executes a page template into a buffer first so a template failure
// cannot leak a half-written page.
func (h *PhonebookHandler) render(w http.ResponseWriter, status int, page string, data pageData) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, page, data); err != nil {
		h.logger.Error("Template execution failed", "template", page, "error", err)
		http.Error(w, "Something went wrong.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
