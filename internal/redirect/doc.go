// Package redirect hands the user off to the Google Drive consent screen.
//
// A Coordinator asks the backend for a provider authorization URL and passes
// it to a Navigator. The session flag redirectingToGoogleDrive is set before
// the request and stays set until the OAuth callback clears it, so a second
// caller in the same terminal session (another command, another gate) is
// suppressed instead of starting a parallel flow.
//
// On failure the flag is cleared and the user sees a single notification;
// BeginExternalLogin still returns the error for callers that care.
package redirect
