//go:build !windows

package uithread

func pumpMessages() {}
