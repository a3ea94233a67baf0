package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/gymflex/gymflex-cli/pkg/clients/apiclient"
	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
	"github.com/gymflex/gymflex-cli/pkg/core/services"
)

type userKey struct{}

func userFrom(ctx context.Context) *model.CurrentUser {
	user, _ := ctx.Value(userKey{}).(*model.CurrentUser)
	return user
}

// requireUser loads the cached user and refetches the session lists.
// Without a user, or once the API rejects the token, the browser is sent to /login.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.state.LoadUser()
		if err != nil {
			s.logger.Warn("Failed to load cached user", zap.Error(err))
		}
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		s.sessions.Refresh(r.Context(), user.IsStaff)
		if s.sessions.Unauthorized() {
			s.logger.Info("Session expired, redirecting to login", zap.String("username", user.Username))
			s.forget()
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	}
}

func (s *Server) forget() {
	if err := services.Logout(s.api, s.state, s.logger); err != nil {
		s.logger.Warn("Failed to clear local state", zap.Error(err))
	}
}

type pageData struct {
	Title     string
	User      *model.CurrentUser
	CSRFField any
	Flash     string
	Error     string
	Content   any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, status int, content any) {
	data := pageData{
		Title:     page,
		User:      userFrom(r.Context()),
		CSRFField: csrf.TemplateField(r),
		Flash:     r.URL.Query().Get("flash"),
		Error:     r.URL.Query().Get("error"),
		Content:   content,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages[page].Execute(w, data); err != nil {
		s.logger.Error("Failed to render page", zap.String("page", page), zap.Error(err))
	}
}

// redirectBack returns to target with a flash or error message in the query
func redirectBack(w http.ResponseWriter, r *http.Request, target, key, message string) {
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		u = &url.URL{Path: "/"}
	}
	if message != "" {
		q := u.Query()
		q.Set(key, message)
		u.RawQuery = q.Encode()
	}
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

// returnTo is the page a form asked to come back to, defaulting to the calendar
func returnTo(r *http.Request) string {
	if target := r.PostFormValue("return_to"); target != "" && target[0] == '/' {
		return target
	}
	return "/"
}

// failure maps a mutation error to the redirect the user sees
func (s *Server) failure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		s.forget()
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	redirectBack(w, r, returnTo(r), "error", err.Error())
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login", http.StatusOK, nil)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if _, err := services.Login(r.Context(), s.api, s.state, s.logger, username, password); err != nil {
		redirectBack(w, r, "/login", "error", err.Error())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.forget()
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type calendarPage struct {
	*services.CalendarViewResult
	MonthLabel string
	PrevMonth  string
	NextMonth  string
	Weekdays   []string
	Cells      []calendarCell
	Overlays   []calendar.Overlay
	Width      int
	Height     int
	Filters    []model.ActivityType
}

type calendarCell struct {
	calendar.Cell
	Bounds calendar.Rect
	Action string
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	in := services.CalendarViewInput{
		User:        user,
		Selection:   s.loadSelection(),
		Today:       s.localNow(),
		ForwardDays: s.cfg.ForwardDays(),
		Closures:    s.closures,
	}
	if month := r.URL.Query().Get("month"); month != "" {
		parsed, err := calendar.ParseDate(month + "-01")
		if err != nil {
			http.Error(w, "invalid month", http.StatusBadRequest)
			return
		}
		in.Month = parsed
	}

	view, err := services.CalendarView(s.sessions, in)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.render(w, r, "calendar", http.StatusOK, buildCalendarPage(view))
}

func buildCalendarPage(view *services.CalendarViewResult) calendarPage {
	month := view.Grid.Month
	page := calendarPage{
		CalendarViewResult: view,
		MonthLabel:         month.Format("January 2006"),
		PrevMonth:          month.AddDate(0, -1, 0).Format("2006-01"),
		NextMonth:          month.AddDate(0, 1, 0).Format("2006-01"),
		Weekdays:           []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		Overlays:           view.Grid.Overlays(cellWidth, cellHeight),
		Width:              cellWidth * calendar.DaysPerWeek,
		Height:             cellHeight * view.Grid.Weeks,
		Filters:            model.ActivityTypes(),
	}
	for _, c := range view.Grid.Cells {
		bounds, _ := view.Grid.CellBounds(c.Date, cellWidth, cellHeight)
		page.Cells = append(page.Cells, calendarCell{
			Cell:   c,
			Bounds: bounds,
			Action: c.Click(view.IsStaff).String(),
		})
	}
	return page
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	user := userFrom(r.Context())

	if err := services.CheckDayOpenable(user, date, s.localNow()); err != nil {
		if errors.Is(err, services.ErrPastDate) {
			redirectBack(w, r, "/", "error", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	view, err := services.DayView(s.sessions.Sessions(), date, s.localNow())
	if err != nil {
		if errors.Is(err, services.ErrNoSessions) {
			redirectBack(w, r, "/", "error", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Opening a day moves the member's selection onto it
	if !user.IsStaff {
		s.updateSelection(func(sel *calendar.Selection) { sel.Set(false, date) })
	}

	s.render(w, r, "day", http.StatusOK, view)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	result, err := services.ToggleBooking(r.Context(), s.api, s.sessions, userFrom(r.Context()), s.logger, s.localNow(), id)
	if err != nil {
		if errors.Is(err, services.ErrSessionFull) {
			redirectBack(w, r, returnTo(r), "error", "Sorry, this session is full.")
			return
		}
		s.failure(w, r, err)
		return
	}

	message := "Booking cancelled."
	if result.Status == model.BookingStatusBooked {
		message = "Session booked."
	}
	redirectBack(w, r, returnTo(r), "flash", message)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	date := r.PostFormValue("date")
	user := userFrom(r.Context())

	if err := services.CheckDayOpenable(user, date, s.localNow()); err != nil {
		if errors.Is(err, services.ErrPastDate) {
			redirectBack(w, r, "/", "error", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.updateSelection(func(sel *calendar.Selection) { sel.Set(user.IsStaff, date) })

	target := "/"
	if user.IsStaff {
		target = "/admin"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	activity, err := model.ParseActivityFilter(r.PostFormValue("activity"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.sessions.SetActivityFilter(activity)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type adminPage struct {
	*services.AdminPanelResult
	All bool
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "1"
	panel, err := services.AdminPanel(s.sessions.Admin(), services.AdminPanelInput{
		User:        userFrom(r.Context()),
		Selection:   s.loadSelection(),
		Today:       s.localNow(),
		Now:         s.localNow(),
		ForwardDays: s.cfg.ForwardDays(),
		All:         all,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotStaff) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.render(w, r, "admin", http.StatusOK, adminPage{AdminPanelResult: panel, All: all})
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if !user.IsStaff {
		http.Error(w, services.ErrNotStaff.Error(), http.StatusForbidden)
		return
	}

	sel := s.loadSelection()
	today := s.localNow()
	rng := calendar.NavigableRange(s.sessions.Admin(), today, s.cfg.ForwardDays())
	nav := calendar.NewNavigator(rng, calendar.ResolveActiveDate(true, sel, rng, today), today)

	var (
		date string
		ok   bool
	)
	switch r.PostFormValue("direction") {
	case "prev":
		date, ok = nav.Previous()
	case "next":
		date, ok = nav.Next()
	case "today":
		date, ok = nav.Today()
	default:
		http.Error(w, "direction must be prev, next or today", http.StatusBadRequest)
		return
	}

	if ok {
		s.updateSelection(func(sel *calendar.Selection) { sel.Set(true, date) })
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) handleRemoveAttendee(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	userID, err := strconv.Atoi(r.PathValue("userID"))
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if err := services.RemoveAttendee(r.Context(), s.api, s.sessions, userFrom(r.Context()), s.logger, sessionID, userID); err != nil {
		s.failure(w, r, err)
		return
	}
	redirectBack(w, r, "/admin", "flash", "Attendee removed.")
}

func (s *Server) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	attendanceID, err := strconv.Atoi(r.PathValue("attendanceID"))
	if err != nil {
		http.Error(w, "invalid attendance id", http.StatusBadRequest)
		return
	}
	attended, err := strconv.ParseBool(r.PostFormValue("attended"))
	if err != nil {
		http.Error(w, "attended must be true or false", http.StatusBadRequest)
		return
	}

	result, err := services.MarkAttendance(r.Context(), s.api, s.sessions, userFrom(r.Context()), s.logger, s.localNow(), sessionID, attendanceID, attended)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	label := "no show"
	if result.Attended {
		label = "attended"
	}
	redirectBack(w, r, "/admin", "flash", result.Attendee.DisplayName()+" marked "+label+".")
}

func (s *Server) loadSelection() calendar.Selection {
	sel, err := s.state.LoadSelection()
	if err != nil {
		s.logger.Warn("Failed to load selection", zap.Error(err))
	}
	return sel
}

func (s *Server) updateSelection(update func(sel *calendar.Selection)) {
	sel := s.loadSelection()
	update(&sel)
	if err := s.state.SaveSelection(sel); err != nil {
		s.logger.Warn("Failed to save selection", zap.Error(err))
	}
}
