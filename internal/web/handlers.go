package web

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"partners-cli/internal/console"
	"partners-cli/internal/form"
	"partners-cli/internal/model"
	"partners-cli/internal/notify"
)

const breadcrumb = "Users & Partners › Users"

type baseVM struct {
	Title      string
	Breadcrumb string
	Endpoint   string
	Stale      bool
	Toasts     []toastVM
	Now        string
	// Seq is the latest notification the page already reflects.
	Seq uint64
}

type toastVM struct {
	Seq      uint64
	Message  string
	Severity string
}

type indexVM struct {
	baseVM
	Loaded      bool
	Rows        []console.Row
	EmptyTitle  string
	EmptyBody   string
	EmptyAction string
}

type countryOptionVM struct {
	Name     string
	Selected bool
}

type formVM struct {
	baseVM
	Mode     string
	ReadOnly bool
	// Action is the POST target; empty in view mode.
	Action string
	ID     string

	UserName  string
	UserCode  string
	Options   []countryOptionVM
	Selected  []string
	NameError string
	// CountriesError is shown under the country picker.
	CountriesError string

	DetailsHTML template.HTML
}

type notFoundVM struct {
	baseVM
	ID string
}

func (s *Server) base(r *http.Request, title string) baseVM {
	vm := baseVM{
		Title:      title,
		Breadcrumb: breadcrumb,
		Endpoint:   s.cfg.Endpoint,
		Stale:      s.cfg.Console.Stale(),
		Now:        time.Now().Format(time.RFC3339),
		Seq:        s.cfg.Hub.LastSeq(),
	}
	// Toasts emitted by the action that redirected here.
	if v := r.URL.Query().Get("since"); v != "" {
		if since, err := strconv.ParseUint(v, 10, 64); err == nil {
			for _, n := range s.cfg.Hub.Since(since) {
				vm.Toasts = append(vm.Toasts, toToastVM(n))
			}
		}
	}
	return vm
}

func toToastVM(n notify.Notification) toastVM {
	return toastVM{Seq: n.Seq, Message: n.Message, Severity: string(n.Severity)}
}

// ensureLoaded fetches the collection for deep links that arrive before any list view.
func (s *Server) ensureLoaded(r *http.Request) {
	if !s.cfg.Console.Loaded() {
		_ = s.cfg.Console.Refresh(r.Context())
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	// Every visit to the list view re-fetches; failures are logged by the console
	// and surface only as the stale marker.
	_ = s.cfg.Console.Refresh(r.Context())

	vm := indexVM{
		baseVM:      s.base(r, "Users"),
		Loaded:      s.cfg.Console.Loaded(),
		Rows:        s.cfg.Console.Rows(),
		EmptyTitle:  console.EmptyTitle,
		EmptyBody:   console.EmptyBody,
		EmptyAction: console.EmptyAction,
	}
	s.writeHTMLTemplate(w, r, http.StatusOK, "index.html", vm)
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	var f form.Form
	if err := s.cfg.Console.RequestAdd(&f); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeForm(w, r, http.StatusOK, &f)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.openExisting(w, r, form.ModeView)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	s.openExisting(w, r, form.ModeEdit)
}

func (s *Server) openExisting(w http.ResponseWriter, r *http.Request, mode form.Mode) {
	s.ensureLoaded(r)
	id := r.PathValue("id")

	var f form.Form
	var err error
	if mode == form.ModeView {
		err = s.cfg.Console.RequestView(&f, id)
	} else {
		err = s.cfg.Console.RequestEdit(&f, id)
	}
	if err != nil {
		s.writeOpenError(w, r, id, err)
		return
	}
	s.writeForm(w, r, http.StatusOK, &f)
}

func (s *Server) writeOpenError(w http.ResponseWriter, r *http.Request, id string, err error) {
	if errors.Is(err, console.ErrRecordNotFound) {
		s.writeHTMLTemplate(w, r, http.StatusNotFound, "notfound.html", notFoundVM{baseVM: s.base(r, "Not found"), ID: id})
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeHTMLTemplate(w, r, http.StatusNotFound, "notfound.html", notFoundVM{baseVM: s.base(r, "Not found")})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var f form.Form
	if err := s.cfg.Console.RequestAdd(&f); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.submit(w, r, &f)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	s.ensureLoaded(r)
	id := r.PathValue("id")
	var f form.Form
	if err := s.cfg.Console.RequestEdit(&f, id); err != nil {
		s.writeOpenError(w, r, id, err)
		return
	}
	s.submit(w, r, &f)
}

// submit applies the posted fields to f and saves. Invalid input re-renders
// the form with inline errors; store outcomes redirect to the list, which
// shows the resulting toast.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, f *form.Form) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	if err := applyFields(f, r.PostForm); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub, ok := f.Submit()
	if !ok {
		s.writeForm(w, r, http.StatusUnprocessableEntity, f)
		return
	}

	mark := s.cfg.Hub.LastSeq()
	if _, err := s.cfg.Console.CommitSave(r.Context(), sub); err != nil {
		s.log.Warn(r.Context(), "save failed", "err", err)
	}
	redirectToList(w, r, mark)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	mark := s.cfg.Hub.LastSeq()
	if err := s.cfg.Console.CommitDelete(r.Context(), id); err != nil {
		s.log.Warn(r.Context(), "delete failed", "id", id, "err", err)
	}
	redirectToList(w, r, mark)
}

func redirectToList(w http.ResponseWriter, r *http.Request, since uint64) {
	q := url.Values{}
	q.Set("since", strconv.FormatUint(since, 10))
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}

// applyFields copies the posted name, code and countries into f. Countries
// already selected keep their order; new ones are appended in posted order.
func applyFields(f *form.Form, vals url.Values) error {
	if err := f.SetName(vals.Get("userName")); err != nil {
		return err
	}
	if err := f.SetCode(vals.Get("userCode")); err != nil {
		return err
	}

	var want []string
	for _, c := range vals["countries"] {
		c = strings.TrimSpace(c)
		if c != "" && !model.HasCountry(want, c) {
			want = append(want, c)
		}
	}
	for _, c := range f.Countries() {
		if !model.HasCountry(want, c) {
			if err := f.ToggleCountry(c); err != nil {
				return err
			}
		}
	}
	for _, c := range want {
		if !model.HasCountry(f.Countries(), c) {
			if err := f.ToggleCountry(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Server) writeForm(w http.ResponseWriter, r *http.Request, status int, f *form.Form) {
	vm := formVM{
		baseVM:   s.base(r, f.Mode().Title()),
		Mode:     f.Mode().String(),
		ReadOnly: f.ReadOnly(),
		UserName: f.Name(),
		UserCode: f.Code(),
		Selected: f.Countries(),
	}
	rec, hasRecord := f.Record()
	if hasRecord {
		vm.ID = rec.ID
	}
	switch f.Mode() {
	case form.ModeAdd:
		vm.Action = "/users"
	case form.ModeEdit:
		vm.Action = "/users/" + url.PathEscape(rec.ID)
	case form.ModeView:
		vm.DetailsHTML = renderMarkdownHTML(model.DetailsMarkdown(rec))
	}
	for _, c := range model.PickerOptions(vm.Selected) {
		vm.Options = append(vm.Options, countryOptionVM{Name: c, Selected: model.HasCountry(vm.Selected, c)})
	}
	errs := f.Errors()
	vm.NameError = errs[model.FieldUserName]
	vm.CountriesError = errs[model.FieldCountries]

	s.writeHTMLTemplate(w, r, status, "form.html", vm)
}
