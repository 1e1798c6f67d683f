// ABOUTME: Root bubbletea model for the newsterm TUI
// ABOUTME: Owns the session manager and routes screens through the guard

package tui

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"newsterm/internal/client"
	"newsterm/internal/config"
	"newsterm/internal/newscache"
	"newsterm/internal/routes"
	"newsterm/internal/session"
	"newsterm/internal/tokenstore"
	"newsterm/internal/tui/debuglog"
	"newsterm/internal/tui/icons"
	"newsterm/internal/tui/login"
	"newsterm/internal/tui/mfasetup"
	"newsterm/internal/tui/mfaverify"
	"newsterm/internal/tui/newsdetail"
	"newsterm/internal/tui/newslist"
	"newsterm/internal/tui/passwordreset"
	"newsterm/internal/tui/register"
	"newsterm/internal/tui/styles"
)

// Layout constants
const (
	minTerminalWidth = 60
	toastDuration    = 4 * time.Second
	newsCacheTTL     = 2 * time.Minute
	newsPageSize     = 20
)

// Messages produced by app-level commands

// restoredMsg triggers the one-time session restore on the update loop
type restoredMsg struct{}

// storeChangedMsg is sent when the token file changed outside this process
type storeChangedMsg struct{}

// toastExpiredMsg clears the transient notification
type toastExpiredMsg struct{ seq int }

// loginResultMsg carries the outcome of a credential login
type loginResultMsg struct{ result session.Result }

// otpSentMsg carries the outcome of an OTP dispatch
type otpSentMsg struct{ err error }

// verifyResultMsg carries the outcome of an MFA verification call
type verifyResultMsg struct {
	data *client.VerifyData
	err  error
}

// newsLoadedMsg carries fetched articles for a query
type newsLoadedMsg struct {
	query    string
	articles []client.Article
	err      error
}

// detailLoadedMsg carries the article resolved from a detail route param
type detailLoadedMsg struct {
	article *client.Article
	err     error
}

// mfaMethodsMsg carries fetched MFA method status
type mfaMethodsMsg struct {
	methods *client.MFAMethods
	err     error
}

// setupStartedMsg carries the outcome of beginning MFA enrollment
type setupStartedMsg struct {
	data *client.SetupData
	err  error
}

// setupVerifiedMsg carries the outcome of confirming MFA enrollment
type setupVerifiedMsg struct {
	data *client.SetupVerifyData
	err  error
}

// mfaDisabledMsg carries the outcome of disabling MFA
type mfaDisabledMsg struct{ err error }

// registerResultMsg carries the outcome of account creation
type registerResultMsg struct{ err error }

// resetRequestMsg carries the outcome of a password reset request
type resetRequestMsg struct{ err error }

// resetVerifyMsg carries the outcome of a password reset verification
type resetVerifyMsg struct{ err error }

// toastLevel selects the notification style
type toastLevel int

const (
	toastInfo toastLevel = iota
	toastSuccess
	toastError
)

// App is the root model for the TUI
type App struct {
	cfg     *config.Config
	api     *client.Client
	mgr     *session.Manager
	cache   *newscache.Cache
	watcher *tokenstore.Watcher

	current routes.Target
	width   int
	height  int

	toastText  string
	toastLevel toastLevel
	toastSeq   int

	// Child models, one per screen
	loginScreen  *login.Model
	mfaScreen    *mfaverify.Model
	regScreen    *register.Model
	resetScreen  *passwordreset.Model
	newsScreen   *newslist.Model
	detailScreen *newsdetail.Model
	setupScreen  *mfasetup.Model
}

// New creates the TUI application. The watcher may be nil when the token
// store has no watchable backing file.
func New(cfg *config.Config, api *client.Client, mgr *session.Manager, watcher *tokenstore.Watcher) *App {
	return &App{
		cfg:     cfg,
		api:     api,
		mgr:     mgr,
		cache:   newscache.New(newsCacheTTL),
		watcher: watcher,
		current: routes.Target{Route: routes.RouteRoot},
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{func() tea.Msg { return restoredMsg{} }}
	if a.watcher != nil {
		cmds = append(cmds, a.waitStoreChange())
	}
	return tea.Batch(cmds...)
}

// waitStoreChange re-arms after every delivery
func (a *App) waitStoreChange() tea.Cmd {
	return func() tea.Msg {
		<-a.watcher.Changes()
		return storeChangedMsg{}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.newsScreen != nil {
			a.newsScreen.SetSize(a.contentWidth(), a.contentHeight())
		}
		if a.detailScreen != nil {
			a.detailScreen.SetSize(a.contentWidth(), a.contentHeight())
		}
		return a, nil

	case restoredMsg:
		a.mgr.Restore()
		return a, a.navigate(routes.Target{Route: routes.RouteRoot})

	case storeChangedMsg:
		return a, a.handleStoreChanged()

	case toastExpiredMsg:
		if msg.seq == a.toastSeq {
			a.toastText = ""
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if msg.String() == "q" && a.quitAllowed() {
			return a, tea.Quit
		}
		return a, a.routeToScreen(msg)

	// Screen requests
	case login.SubmitMsg:
		return a, a.doLogin(msg)
	case login.NavigateMsg:
		return a, a.navigate(routes.Target{Route: msg.To})
	case mfaverify.SendOTPMsg:
		return a, a.doSendOTP(msg.Method)
	case mfaverify.VerifyMsg:
		return a, a.doVerify(msg)
	case mfaverify.AbandonMsg:
		a.mgr.AbandonPendingLogin()
		return a, a.navigate(routes.Target{Route: routes.RouteLogin})
	case register.SubmitMsg:
		return a, a.doRegister(msg)
	case register.BackMsg, passwordreset.BackMsg:
		return a, a.navigate(routes.Target{Route: routes.RouteLogin})
	case passwordreset.RequestMsg:
		return a, a.doResetRequest(msg.Email)
	case passwordreset.VerifyMsg:
		return a, a.doResetVerify(msg)
	case newslist.SearchMsg:
		return a, a.doSearch(msg)
	case newslist.OpenMsg:
		a.detailScreen = newsdetail.New(msg.Article, a.contentWidth(), a.contentHeight())
		a.current = routes.Target{Route: routes.RouteNewsDetail, Param: a.detailScreen.ID()}
		return a, nil
	case newslist.SetupMsg:
		return a, a.navigate(routes.Target{Route: routes.RouteMFASetup})
	case newslist.LogoutMsg:
		return a, a.doLogout()
	case newsdetail.BackMsg:
		return a, a.navigate(routes.Target{Route: routes.RouteNews})
	case mfasetup.LoadMsg:
		return a, a.loadMFAMethods()
	case mfasetup.BeginSetupMsg:
		return a, a.doBeginSetup()
	case mfasetup.VerifySetupMsg:
		return a, a.doVerifySetup(msg)
	case mfasetup.DisableMsg:
		return a, a.doDisableMFA(msg.Code)
	case mfasetup.BackMsg:
		return a, a.navigate(routes.Target{Route: routes.RouteNews})

	// Backend call outcomes
	case loginResultMsg:
		return a, a.handleLoginResult(msg.result)
	case otpSentMsg:
		return a, a.handleOTPSent(msg.err)
	case verifyResultMsg:
		return a, a.handleVerifyResult(msg)
	case newsLoadedMsg:
		return a, a.handleNewsLoaded(msg)
	case detailLoadedMsg:
		return a, a.handleDetailLoaded(msg)
	case mfaMethodsMsg:
		return a, a.handleMFAMethods(msg)
	case setupStartedMsg:
		return a, a.handleSetupStarted(msg)
	case setupVerifiedMsg:
		return a, a.handleSetupVerified(msg)
	case mfaDisabledMsg:
		return a, a.handleMFADisabled(msg.err)
	case registerResultMsg:
		return a, a.handleRegisterResult(msg.err)
	case resetRequestMsg:
		return a, a.handleResetRequest(msg.err)
	case resetVerifyMsg:
		return a, a.handleResetVerify(msg.err)
	}

	return a, a.routeToScreen(msg)
}

// quitAllowed reports whether a bare "q" should quit; never while a text
// input is focused
func (a *App) quitAllowed() bool {
	switch a.current.Route {
	case routes.RouteNews:
		return a.newsScreen != nil && !a.newsScreen.Searching()
	case routes.RouteNewsDetail, routes.RouteNotFound:
		return true
	}
	return false
}

// routeToScreen forwards a message to the active screen's model
func (a *App) routeToScreen(msg tea.Msg) tea.Cmd {
	var model tea.Model
	var cmd tea.Cmd

	switch a.current.Route {
	case routes.RouteLogin:
		if a.loginScreen == nil {
			return nil
		}
		model, cmd = a.loginScreen.Update(msg)
		a.loginScreen = model.(*login.Model)
	case routes.RouteMFALoginVerify:
		if a.mfaScreen == nil {
			return nil
		}
		model, cmd = a.mfaScreen.Update(msg)
		a.mfaScreen = model.(*mfaverify.Model)
	case routes.RouteRegister:
		if a.regScreen == nil {
			return nil
		}
		model, cmd = a.regScreen.Update(msg)
		a.regScreen = model.(*register.Model)
	case routes.RoutePasswordResetRequest, routes.RoutePasswordResetVerify:
		if a.resetScreen == nil {
			return nil
		}
		model, cmd = a.resetScreen.Update(msg)
		a.resetScreen = model.(*passwordreset.Model)
	case routes.RouteNews:
		if a.newsScreen == nil {
			return nil
		}
		model, cmd = a.newsScreen.Update(msg)
		a.newsScreen = model.(*newslist.Model)
	case routes.RouteNewsDetail:
		if a.detailScreen == nil {
			return nil
		}
		model, cmd = a.detailScreen.Update(msg)
		a.detailScreen = model.(*newsdetail.Model)
	case routes.RouteMFASetup:
		if a.setupScreen == nil {
			return nil
		}
		model, cmd = a.setupScreen.Update(msg)
		a.setupScreen = model.(*mfasetup.Model)
	}
	return cmd
}

// navigate moves to a target through the route guard. Redirect chains are
// followed until a route is allowed or the session is still loading.
func (a *App) navigate(target routes.Target) tea.Cmd {
	for range 3 {
		verdict := routes.Evaluate(a.mgr.Snapshot(), target)
		switch verdict.Decision {
		case routes.Wait:
			a.current = target
			return nil
		case routes.Redirect:
			if verdict.SaveTarget {
				a.mgr.SaveRedirectTarget(target.Path())
			}
			target = verdict.RedirectTo
			continue
		case routes.Allow:
			return a.enter(target)
		}
	}
	return a.enter(routes.Target{Route: routes.RouteNotFound})
}

// enter instantiates the screen for an allowed target
func (a *App) enter(target routes.Target) tea.Cmd {
	a.current = target

	switch target.Route {
	case routes.RouteLogin:
		// Opening login restarts any in-progress MFA attempt
		a.mgr.AbandonPendingLogin()
		a.loginScreen = login.New()
		return nil

	case routes.RouteMFALoginVerify:
		if _, ok := a.mgr.PendingLoginToken(); !ok {
			return a.navigate(routes.Target{Route: routes.RouteLogin})
		}
		if a.mfaScreen == nil {
			a.mfaScreen = mfaverify.New()
		}
		return nil

	case routes.RouteRegister:
		a.regScreen = register.New()
		return nil

	case routes.RoutePasswordResetRequest:
		a.resetScreen = passwordreset.New(passwordreset.PhaseRequest)
		return nil

	case routes.RoutePasswordResetVerify:
		a.resetScreen = passwordreset.New(passwordreset.PhaseVerify)
		return nil

	case routes.RouteNews:
		if a.newsScreen == nil {
			a.newsScreen = newslist.New()
			a.newsScreen.SetSize(a.contentWidth(), a.contentHeight())
		}
		return tea.Batch(
			a.newsScreen.StartLoading(),
			a.fetchNews(a.newsScreen.ActiveQuery(), false),
		)

	case routes.RouteNewsDetail:
		if a.detailScreen != nil && a.detailScreen.ID() == target.Param {
			return nil
		}
		return a.fetchDetail(target.Param)

	case routes.RouteMFASetup:
		a.setupScreen = mfasetup.New()
		a.setupScreen.SetBusy(true)
		return a.loadMFAMethods()
	}

	return nil
}

// --- session operations ---

func (a *App) doLogin(msg login.SubmitMsg) tea.Cmd {
	mgr := a.mgr
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		return loginResultMsg{result: mgr.Login(ctx, msg.Username, msg.Password)}
	}
}

func (a *App) handleLoginResult(res session.Result) tea.Cmd {
	if !res.Success {
		if a.loginScreen != nil {
			if len(res.Fields) > 0 {
				a.loginScreen.SetFailure(&client.Failure{
					Kind:    client.KindFieldErrors,
					Message: res.Message,
					Fields:  res.Fields,
				})
			} else {
				a.loginScreen.SetError(res.Message)
			}
		}
		return a.showToast(toastError, res.Message)
	}

	if res.RequiresMFA {
		// Dispatch the first email code right away, as the login screen
		// forwards to the challenge
		a.mfaScreen = mfaverify.New()
		a.mfaScreen.SetMethod(client.MethodEmail)
		a.mfaScreen.MarkSending()
		a.current = routes.Target{Route: routes.RouteMFALoginVerify}
		return tea.Batch(
			a.doSendOTP(client.MethodEmail),
			a.showToast(toastInfo, "Two-factor verification required."),
		)
	}

	return tea.Batch(
		a.showToast(toastSuccess, "Login successful!"),
		a.afterAuthentication(),
	)
}

// afterAuthentication consumes the redirect target or lands on news
func (a *App) afterAuthentication() tea.Cmd {
	if path, ok := a.mgr.TakeRedirectTarget(); ok {
		return a.navigate(routes.ParsePath(path))
	}
	return a.navigate(routes.Target{Route: routes.RouteNews})
}

func (a *App) doSendOTP(method string) tea.Cmd {
	token, ok := a.mgr.PendingLoginToken()
	if !ok {
		return a.navigate(routes.Target{Route: routes.RouteLogin})
	}
	if a.mfaScreen != nil {
		a.mfaScreen.MarkSending()
	}
	debuglog.Log("dispatching %s code for pending login %s", method, debuglog.Redact(token))
	api := a.api
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		return otpSentMsg{err: api.SendOTP(ctx, token, method)}
	}
}

func (a *App) handleOTPSent(err error) tea.Cmd {
	if a.mfaScreen == nil {
		// User already left the challenge; nothing to act on
		return nil
	}
	if err != nil {
		f := client.AsFailure(err)
		a.mfaScreen.DispatchFailed(f)
		return a.showToast(toastError, f.Error())
	}
	return tea.Batch(
		a.mfaScreen.OTPDispatched(),
		a.showToast(toastSuccess, "A new code has been sent to your email."),
	)
}

func (a *App) doVerify(msg mfaverify.VerifyMsg) tea.Cmd {
	token, ok := a.mgr.PendingLoginToken()
	if !ok {
		return a.navigate(routes.Target{Route: routes.RouteLogin})
	}
	api := a.api
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		data, err := api.VerifyMFA(ctx, token, msg.Method, msg.Code, msg.BackupCode)
		return verifyResultMsg{data: data, err: err}
	}
}

func (a *App) handleVerifyResult(msg verifyResultMsg) tea.Cmd {
	if snap := a.mgr.Snapshot(); snap.IsAuthenticated {
		// A newer attempt already completed; drop the stale response
		return nil
	}
	if msg.err != nil {
		f := client.AsFailure(msg.err)
		if a.mfaScreen != nil {
			a.mfaScreen.VerifyFailed(f)
		}
		return a.showToast(toastError, f.Error())
	}

	res := a.mgr.CompleteMFALogin(msg.data.Tokens, msg.data.User)
	if !res.Success {
		if a.mfaScreen != nil {
			a.mfaScreen.VerifyFailed(&client.Failure{Kind: client.KindMessage, Message: res.Message})
		}
		return a.showToast(toastError, res.Message)
	}

	a.mfaScreen = nil
	return tea.Batch(
		a.showToast(toastSuccess, "Verification successful!"),
		a.afterAuthentication(),
	)
}

func (a *App) doLogout() tea.Cmd {
	a.mgr.Logout()
	a.cache.Purge()
	a.newsScreen = nil
	a.detailScreen = nil
	a.setupScreen = nil
	return tea.Batch(
		a.showToast(toastInfo, "You have been logged out."),
		a.navigate(routes.Target{Route: routes.RouteLogin}),
	)
}

// forceLogout reacts to a 401 on an authenticated call: the current path is
// saved so a fresh login returns here
func (a *App) forceLogout() tea.Cmd {
	debuglog.Log("unauthorized response, ending session at %s", a.current.Path())
	a.mgr.HandleUnauthorized(a.current.Path())
	a.cache.Purge()
	a.newsScreen = nil
	a.detailScreen = nil
	a.setupScreen = nil
	return tea.Batch(
		a.showToast(toastError, "Session expired or unauthorized. Please log in again."),
		a.navigate(routes.Target{Route: routes.RouteLogin}),
	)
}

// handleStoreChanged re-derives session state after an external change
func (a *App) handleStoreChanged() tea.Cmd {
	wasAuthed := a.mgr.Snapshot().IsAuthenticated
	a.mgr.Refresh()
	now := a.mgr.Snapshot().IsAuthenticated

	var cmds []tea.Cmd
	if a.watcher != nil {
		cmds = append(cmds, a.waitStoreChange())
	}
	if wasAuthed && !now {
		a.cache.Purge()
		a.newsScreen = nil
		a.detailScreen = nil
		a.setupScreen = nil
		cmds = append(cmds,
			a.showToast(toastInfo, "Logged out in another session."),
			a.navigate(routes.Target{Route: routes.RouteLogin}),
		)
	} else if !wasAuthed && now {
		cmds = append(cmds, a.navigate(a.current))
	}
	return tea.Batch(cmds...)
}

// --- news operations ---

func (a *App) doSearch(msg newslist.SearchMsg) tea.Cmd {
	if a.newsScreen == nil {
		return nil
	}
	if !msg.Force {
		if articles, ok := a.cache.Get(msg.Query); ok {
			a.newsScreen.SetArticles(articles)
			return nil
		}
	}
	return tea.Batch(a.newsScreen.StartLoading(), a.fetchNews(msg.Query, msg.Force))
}

func (a *App) fetchNews(query string, force bool) tea.Cmd {
	if !force {
		if articles, ok := a.cache.Get(query); ok {
			return func() tea.Msg {
				return newsLoadedMsg{query: query, articles: articles}
			}
		}
	}
	api := a.api
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		news, err := api.SearchNews(ctx, query, newsPageSize)
		if err != nil {
			return newsLoadedMsg{query: query, err: err}
		}
		return newsLoadedMsg{query: query, articles: news.Articles}
	}
}

func (a *App) handleNewsLoaded(msg newsLoadedMsg) tea.Cmd {
	if msg.err != nil {
		if client.IsUnauthorized(msg.err) {
			return a.forceLogout()
		}
		f := client.AsFailure(msg.err)
		debuglog.Error("news fetch", msg.err)
		if a.newsScreen != nil {
			a.newsScreen.SetError(f.Error())
		}
		return a.showToast(toastError, f.Error())
	}

	a.cache.Set(msg.query, msg.articles)
	if a.newsScreen != nil && a.newsScreen.ActiveQuery() == msg.query {
		a.newsScreen.SetArticles(msg.articles)
	}
	return nil
}

// fetchDetail resolves a detail route parameter back to an article by
// searching for its URL
func (a *App) fetchDetail(param string) tea.Cmd {
	decoded, err := url.PathUnescape(param)
	if err != nil || decoded == "" {
		return a.navigate(routes.Target{Route: routes.RouteNews})
	}
	api := a.api
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		news, err := api.SearchNews(ctx, decoded, 5)
		if err != nil {
			return detailLoadedMsg{err: err}
		}
		for _, article := range news.Articles {
			if client.ArticleID(article.URL) == param {
				return detailLoadedMsg{article: &article}
			}
		}
		if len(news.Articles) > 0 {
			return detailLoadedMsg{article: &news.Articles[0]}
		}
		return detailLoadedMsg{err: &client.Failure{Kind: client.KindMessage, Message: "Article not found."}}
	}
}

func (a *App) handleDetailLoaded(msg detailLoadedMsg) tea.Cmd {
	if msg.err != nil {
		if client.IsUnauthorized(msg.err) {
			return a.forceLogout()
		}
		return tea.Batch(
			a.showToast(toastError, client.AsFailure(msg.err).Error()),
			a.navigate(routes.Target{Route: routes.RouteNews}),
		)
	}
	a.detailScreen = newsdetail.New(*msg.article, a.contentWidth(), a.contentHeight())
	a.current = routes.Target{Route: routes.RouteNewsDetail, Param: a.detailScreen.ID()}
	return nil
}

// --- MFA setup operations ---

func (a *App) loadMFAMethods() tea.Cmd {
	api := a.api
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		methods, err := api.GetMFAMethods(ctx)
		return mfaMethodsMsg{methods: methods, err: err}
	}
}

func (a *App) handleMFAMethods(msg mfaMethodsMsg) tea.Cmd {
	if msg.err != nil {
		if client.IsUnauthorized(msg.err) {
			return a.forceLogout()
		}
		if a.setupScreen != nil {
			a.setupScreen.SetFailure(client.AsFailure(msg.err))
		}
		return a.showToast(toastError, "Failed to fetch MFA status.")
	}
	if a.setupScreen != nil {
		a.setupScreen.SetMethods(msg.methods)
	}
	return nil
}

func (a *App) doBeginSetup() tea.Cmd {
	snap := a.mgr.Snapshot()
	if snap.User == nil {
		return a.forceLogout()
	}
	email := snap.User.Email
	api := a.api
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		data, err := api.SetupEmailMFA(ctx, email)
		return setupStartedMsg{data: data, err: err}
	}
}

func (a *App) handleSetupStarted(msg setupStartedMsg) tea.Cmd {
	if msg.err != nil {
		if client.IsUnauthorized(msg.err) {
			return a.forceLogout()
		}
		if a.setupScreen != nil {
			a.setupScreen.SetFailure(client.AsFailure(msg.err))
		}
		return a.showToast(toastError, client.AsFailure(msg.err).Error())
	}
	if a.setupScreen != nil {
		a.setupScreen.SetupStarted(msg.data)
	}
	return a.showToast(toastInfo, "MFA setup initiated.")
}

func (a *App) doVerifySetup(msg mfasetup.VerifySetupMsg) tea.Cmd {
	api := a.api
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		data, err := api.VerifyEmailMFA(ctx, msg.SetupToken, msg.Code)
		return setupVerifiedMsg{data: data, err: err}
	}
}

func (a *App) handleSetupVerified(msg setupVerifiedMsg) tea.Cmd {
	if msg.err != nil {
		if client.IsUnauthorized(msg.err) {
			return a.forceLogout()
		}
		if a.setupScreen != nil {
			a.setupScreen.SetFailure(client.AsFailure(msg.err))
		}
		return a.showToast(toastError, client.AsFailure(msg.err).Error())
	}
	if a.setupScreen != nil {
		a.setupScreen.SetupVerified(msg.data)
	}
	return a.showToast(toastSuccess, "MFA successfully enabled!")
}

func (a *App) doDisableMFA(code string) tea.Cmd {
	api := a.api
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		return mfaDisabledMsg{err: api.DisableMFA(ctx, client.MethodEmail, code)}
	}
}

func (a *App) handleMFADisabled(err error) tea.Cmd {
	if err != nil {
		if client.IsUnauthorized(err) {
			return a.forceLogout()
		}
		if a.setupScreen != nil {
			a.setupScreen.SetFailure(client.AsFailure(err))
		}
		return a.showToast(toastError, client.AsFailure(err).Error())
	}
	if a.setupScreen != nil {
		a.setupScreen.Disabled()
	}
	return tea.Batch(
		a.showToast(toastSuccess, "MFA disabled successfully."),
		a.loadMFAMethods(),
	)
}

// --- account operations ---

func (a *App) doRegister(msg register.SubmitMsg) tea.Cmd {
	api := a.api
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		return registerResultMsg{err: api.Register(ctx, msg.Username, msg.Email, msg.Password)}
	}
}

func (a *App) handleRegisterResult(err error) tea.Cmd {
	if err != nil {
		f := client.AsFailure(err)
		if a.regScreen != nil {
			a.regScreen.SetFailure(f)
		}
		return a.showToast(toastError, f.Error())
	}
	return tea.Batch(
		a.showToast(toastSuccess, "Account created. Please log in."),
		a.navigate(routes.Target{Route: routes.RouteLogin}),
	)
}

func (a *App) doResetRequest(email string) tea.Cmd {
	api := a.api
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		return resetRequestMsg{err: api.RequestPasswordReset(ctx, email)}
	}
}

func (a *App) handleResetRequest(err error) tea.Cmd {
	if a.resetScreen == nil {
		return nil
	}
	if err != nil {
		f := client.AsFailure(err)
		a.resetScreen.SetFailure(f)
		return a.showToast(toastError, f.Error())
	}
	a.resetScreen.RequestAccepted()
	a.current = routes.Target{Route: routes.RoutePasswordResetVerify}
	return nil
}

func (a *App) doResetVerify(msg passwordreset.VerifyMsg) tea.Cmd {
	api := a.api
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		return resetVerifyMsg{err: api.VerifyPasswordReset(ctx, msg.ResetToken, msg.NewPassword)}
	}
}

func (a *App) handleResetVerify(err error) tea.Cmd {
	if err != nil {
		f := client.AsFailure(err)
		if a.resetScreen != nil {
			a.resetScreen.SetFailure(f)
		}
		return a.showToast(toastError, f.Error())
	}
	return tea.Batch(
		a.showToast(toastSuccess, "Password updated. Please log in."),
		a.navigate(routes.Target{Route: routes.RouteLogin}),
	)
}

// --- helpers ---

func (a *App) callContext() (context.Context, context.CancelFunc) {
	timeout := 30 * time.Second
	if a.cfg != nil && a.cfg.RequestTimeout > 0 {
		timeout = a.cfg.RequestTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (a *App) showToast(level toastLevel, text string) tea.Cmd {
	if text == "" {
		return nil
	}
	a.toastSeq++
	a.toastText = text
	a.toastLevel = level
	seq := a.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (a *App) contentWidth() int {
	if a.width < minTerminalWidth {
		return minTerminalWidth - 4
	}
	return a.width - 4
}

func (a *App) contentHeight() int {
	// Header, toast row, footer, and panel padding
	return a.height - 8
}

// View implements tea.Model
func (a *App) View() string {
	snap := a.mgr.Snapshot()

	var content string
	if snap.Loading {
		content = styles.Subtitle.Render("Loading authentication...")
	} else {
		content = a.viewScreen()
	}

	var sb strings.Builder
	sb.WriteString(a.renderHeader(snap))
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	if a.toastText != "" {
		sb.WriteString(a.renderToast())
		sb.WriteString("\n")
	}
	sb.WriteString(a.renderFooter())
	return sb.String()
}

func (a *App) viewScreen() string {
	switch a.current.Route {
	case routes.RouteLogin:
		if a.loginScreen != nil {
			return a.loginScreen.View()
		}
	case routes.RouteMFALoginVerify:
		if a.mfaScreen != nil {
			return a.mfaScreen.View()
		}
	case routes.RouteRegister:
		if a.regScreen != nil {
			return a.regScreen.View()
		}
	case routes.RoutePasswordResetRequest, routes.RoutePasswordResetVerify:
		if a.resetScreen != nil {
			return a.resetScreen.View()
		}
	case routes.RouteNews:
		if a.newsScreen != nil {
			return a.newsScreen.View()
		}
	case routes.RouteNewsDetail:
		if a.detailScreen != nil {
			return a.detailScreen.View()
		}
		return styles.Subtitle.Render("Loading article...")
	case routes.RouteMFASetup:
		if a.setupScreen != nil {
			return a.setupScreen.View()
		}
	case routes.RouteNotFound:
		return styles.Title.Render(icons.Warning.String()+" Not found") + "\n" +
			styles.Subtitle.Render("Nothing lives at "+a.current.Path())
	}
	return ""
}

func (a *App) renderToast() string {
	style := styles.ToastInfo
	switch a.toastLevel {
	case toastSuccess:
		style = styles.ToastSuccess
	case toastError:
		style = styles.ToastError
	}
	return style.Render(a.toastText)
}

// renderHeader creates the header bar with app branding and session context
func (a *App) renderHeader(snap session.Snapshot) string {
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s", icons.App.String(), titleStyle.Render("newsterm"))

	rightText := ""
	if snap.IsAuthenticated && snap.User != nil {
		rightText = contextStyle.Render(icons.User.String()+" "+snap.User.Username) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := width - 4 - leftWidth - rightWidth
	if fillWidth < 0 {
		fillWidth = 0
	}

	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"
	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts for the screen
func (a *App) renderFooter() string {
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)

	var shortcuts []string
	switch a.current.Route {
	case routes.RouteLogin:
		shortcuts = []string{"enter Submit", "ctrl+r Register", "ctrl+c Quit"}
	case routes.RouteMFALoginVerify:
		shortcuts = []string{"enter Verify", "esc Back", "ctrl+c Quit"}
	case routes.RouteNews:
		shortcuts = []string{"/ Search", "c Category", "enter Open", "q Quit"}
	case routes.RouteNewsDetail:
		shortcuts = []string{"↑↓ Scroll", "b Back", "q Quit"}
	default:
		shortcuts = []string{"esc Back", "ctrl+c Quit"}
	}

	var styled []string
	var plain []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styled = append(styled, s)
		}
		plain = append(plain, s)
	}

	leftText := " " + strings.Join(styled, "  ")
	leftPlain := " " + strings.Join(plain, "  ")

	fillWidth := width - 4 - lipgloss.Width(leftPlain)
	if fillWidth < 0 {
		fillWidth = 0
	}

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + "─╯"
	return borderStyle.Render(footer)
}

// Run starts the TUI
func Run(cfg *config.Config, api *client.Client, mgr *session.Manager, watcher *tokenstore.Watcher) error {
	app := New(cfg, api, mgr, watcher)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
