package ticker

import "stock-ticker/internal/quotes"

const connectingMessage = "Connecting to network..."

// message returns the text scrolled for a non-OK status and whether the
// status needs the settings to be fixed before polling can succeed.
func message(status quotes.Status) (text string, reconfigure bool) {
	switch status {
	case quotes.StatusNoWiFi:
		return "No network, check connection or credentials, trying again later.", false
	case quotes.StatusInitRequestFailed:
		return "Failed to initialize request, trying again later.", false
	case quotes.StatusConnectionFailed, quotes.StatusSendHeaderFailed, quotes.StatusSendPayloadFailed:
		return "Bad connection, check network connection or credentials, trying again later.", false
	case quotes.StatusBadJSONResponse:
		return "Bad response from server, trying again later.", false
	case quotes.StatusBadRequest:
		return "Bad request, modify ticker_settings.json to finish.", true
	case quotes.StatusForbidden:
		return `Forbidden, modify "apcaApiKeyId" and/or "apcaApiSecretKey" in ticker_settings.json to finish.`, true
	case quotes.StatusTooManyRequests:
		return "Too many requests, upgrade Alpaca Markets account, trying again later.", false
	case quotes.StatusInternalServerError:
		return "Internal server error, check Alpaca Markets' Slack or Community Forum, trying again later.", false
	default:
		return "Unknown error, trying again later.", false
	}
}
