package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/dgrijalva/jwt-go"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/delivtrack-go/internal/cli/output"
	"github.com/yndnr/delivtrack-go/internal/core/domain"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and keep the session for later commands",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Username (prompted if omitted)",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Password (prompted if omitted)",
				EnvVars: []string{"DELIVTRACK_PASSWORD"},
			},
		},
		Action: login,
	}
}

func login(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	creds := domain.Credentials{
		Username: strings.TrimSpace(c.String("username")),
		Password: c.String("password"),
	}
	if creds.Username == "" {
		if err := ask(c, &survey.Input{Message: "Username"}, &creds.Username); err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		creds.Username = strings.TrimSpace(creds.Username)
	}
	if creds.Password == "" {
		if err := ask(c, &survey.Password{Message: "Password"}, &creds.Password); err != nil {
			return fmt.Errorf("read password: %w", err)
		}
	}
	if creds.Username == "" || creds.Password == "" {
		return domain.ErrMissingArgument.WithDetails("Username and password are required")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	result := rt.Session.Login(ctx, creds)
	if !result.Success {
		return errors.New(result.Error)
	}

	fmt.Fprintf(c.App.Writer, "Logged in as %s.\n", rt.Session.State().Username())
	return nil
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Discard the stored session",
		Action: logout,
	}
}

func logout(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	prev := rt.Session.State().Username()
	if err := rt.Session.Logout(c.Context); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	if prev == "" {
		fmt.Fprintln(c.App.Writer, "Not logged in.")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Logged out %s.\n", prev)
	return nil
}

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:    "status",
		Aliases: []string{"whoami"},
		Usage:   "Show the session and connection settings",
		Action:  status,
	}
}

// statusView is the machine-readable status.
type statusView struct {
	Authenticated bool       `json:"authenticated"`
	Username      string     `json:"username,omitempty"`
	Route         string     `json:"route"`
	APIURL        string     `json:"apiUrl"`
	Store         string     `json:"store"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

func status(c *cli.Context) error {
	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}

	state := rt.Session.State()
	view := statusView{
		Authenticated: state.IsAuthenticated,
		Username:      state.Username(),
		Route:         string(rt.Navigator.Current()),
		APIURL:        rt.Pipeline.BaseURL(),
		Store:         rt.Config.Store.Engine,
	}
	if exp, ok := tokenExpiry(rt.Session.Token()); ok {
		view.ExpiresAt = &exp
	}

	if !isTable(c) {
		return render(c, view)
	}

	kv := output.KeyValues{}
	if view.Authenticated {
		kv = kv.Add("Status", "logged in").Add("User", view.Username)
	} else {
		kv = kv.Add("Status", "not logged in")
	}
	if view.ExpiresAt != nil {
		expiry := view.ExpiresAt.Local().Format(time.RFC1123)
		if time.Now().After(*view.ExpiresAt) {
			expiry += " (expired)"
		}
		kv = kv.Add("Token expires", expiry)
	}
	kv = kv.Add("Screen", view.Route).
		Add("API", view.APIURL).
		Add("Session store", view.Store)
	return kv.Render(c.App.Writer)
}

// tokenExpiry reads the exp claim of a JWT without verifying it. The
// token is opaque to the client, so a token that is not a JWT simply has
// no known expiry.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(exp), 0), true
}
