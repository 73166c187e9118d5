// Package sessionflags bridges the OAuth redirect boundary.
//
// Starting the Google Drive login hands the browser an authorization URL and
// the command that did so ends. The next invocation shares no memory with it,
// so the two coordinate through a tiny key/value store scoped to the terminal
// session: values survive across invocations in the same shell and vanish
// with it.
//
// Exactly two keys exist:
//
//   - KeyRedirecting ("redirectingToGoogleDrive"): "true" while a redirect is
//     underway. Written by the redirect coordinator, cleared by the OAuth
//     callback or by a manual retry.
//   - KeyReturnPath ("googleDriveRedirect"): where to go once the callback
//     completes. Written by the auth gate, consumed by the callback.
//
// Every backend rejects other keys with ErrUnknownKey. Domain data does not
// belong here.
package sessionflags
