package telegram

import (
	"github.com/go-telegram/bot/models"
)

// isAdmin checks if the user is listed in bot.admins.
func (rb *Bot) isAdmin(user *models.User) bool {
	if user == nil {
		return false
	}
	return rb.cfg.IsAdmin(user.Username)
}
