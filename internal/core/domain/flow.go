package domain

// FailureCode identifies why a callback or claim failed. The string value
// is machine-readable and safe to place in a redirect parameter; internal
// error text never is.
type FailureCode string

const (
	// FailureSessionExpired - the state was absent from the store
	// (expired, forged, or never issued).
	FailureSessionExpired FailureCode = "session_expired"

	// FailureInvalidState - a state was present but did not match.
	FailureInvalidState FailureCode = "invalid_state"

	// FailureReplayedState - the state was already consumed once.
	FailureReplayedState FailureCode = "replayed_state"

	// FailureProviderDenied - the provider reported an error on redirect.
	FailureProviderDenied FailureCode = "provider_denied"

	// FailureMissingCode - no authorization code in the callback.
	FailureMissingCode FailureCode = "missing_code"

	// FailureTokenExchange - the code-for-token exchange failed.
	// Never retried: authorization codes are single-use.
	FailureTokenExchange FailureCode = "token_exchange_failed"

	// FailureProfileFetch - the identity profile fetch failed.
	FailureProfileFetch FailureCode = "profile_fetch_failed"

	// FailureGameNotFound - the targeted entry does not exist.
	FailureGameNotFound FailureCode = "game_not_found"

	// FailureInvalidOwnerURL - no handle in the declared-owner URL.
	FailureInvalidOwnerURL FailureCode = "invalid_owner_url"

	// FailureHandleMismatch - authenticated handle is not the owner.
	FailureHandleMismatch FailureCode = "not_your_game"

	// FailureAlreadyClaimed - another identity claimed the entry first.
	FailureAlreadyClaimed FailureCode = "already_claimed"

	// FailureUpdateFailed - the conditional claim write errored.
	FailureUpdateFailed FailureCode = "update_failed"

	// FailureUnexpected - catch-all; details stay in the logs.
	FailureUnexpected FailureCode = "unexpected_error"
)

const (
	// LandingPath is where a plain login lands after success.
	LandingPath = "/"

	// ErrorPagePath is the generic error page for failures that have no
	// game page to return to.
	ErrorPagePath = "/claim/error"
)

// ClaimSuccessRedirect builds the redirect target after a successful claim,
// or after a plain login when slug is empty.
func ClaimSuccessRedirect(slug string) string {
	if slug == "" {
		return LandingPath
	}
	return "/games/" + slug + "?success=game-claimed"
}

// FailureRedirect builds the redirect target for a failed flow. Failures
// scoped to a known game return to that game's page; everything else goes
// to the generic error page.
func FailureRedirect(code FailureCode, slug string) string {
	if slug != "" {
		switch code {
		case FailureHandleMismatch, FailureAlreadyClaimed, FailureInvalidOwnerURL, FailureUpdateFailed:
			return "/games/" + slug + "?error=" + string(code)
		}
	}
	return ErrorPagePath + "?error=" + string(code)
}
