package handlers

import (
	"net/http"
	"strings"

	"blogbuild/pkg/config"
	"blogbuild/pkg/logger"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	sessionTokenKey = "access_token"
	sessionStateKey = "oauth_state"
)

const loginPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Sign in</title></head>
<body><p><a href="/login/github">Sign in with GitHub</a></p></body>
</html>`

// AuthRequired lets every request through when GitHub login is not
// configured.
func AuthRequired(c *gin.Context) {
	if !config.AuthEnabled() {
		c.Next()
		return
	}
	session := sessions.Default(c)
	if token, ok := session.Get(sessionTokenKey).(string); !ok || token == "" {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		} else {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
		}
		return
	}
	c.Next()
}

func LoginPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(loginPage))
}

func GithubLogin(c *gin.Context) {
	if !config.AuthEnabled() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	state := uuid.NewString()
	session := sessions.Default(c)
	session.Set(sessionStateKey, state)
	if err := session.Save(); err != nil {
		c.String(http.StatusInternalServerError, "Session error")
		return
	}
	url := config.OauthConf.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

func AuthCallback(c *gin.Context) {
	if !config.AuthEnabled() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	session := sessions.Default(c)
	expected, _ := session.Get(sessionStateKey).(string)
	if expected == "" || c.Query("state") != expected {
		c.String(http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	session.Delete(sessionStateKey)

	token, err := config.OauthConf.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		logger.Log.Warn("oauth exchange failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "OAuth Exchange Failed")
		return
	}

	session.Set(sessionTokenKey, token.AccessToken)
	if err := session.Save(); err != nil {
		c.String(http.StatusInternalServerError, "Session error")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/login")
}
