package main

import (
	"image"
	"os"

	"picocam/host/grabber"
)

func writeImage(name string, e grabber.Encoder, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := e.Encode(f, img, *scale); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
