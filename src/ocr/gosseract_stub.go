//go:build !gosseract

package ocr

func newGosseractEngine() Engine { return nil }
