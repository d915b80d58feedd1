// Package ui implements the interactive terminal pieces of biosync using bubbletea's Elm architecture.
//
// [Form] collects the values `generate` needs (Spotify app credentials, redirect URL, Telegram login),
// one text field per line, with secret fields masked. [TeaPrompter] runs a form as a program and
// satisfies the [Prompter] interface the commands depend on.
//
// [StatusModel] renders live scheduler progress for `run --tui`. Updates flow through the scheduler's
// non-blocking channel; quitting asks the scheduler to stop and waits for the idle bio to be written.
package ui
