package main

import (
	"blog-go-template/internal/app"
	"blog-go-template/internal/config"
)

func main() {
	application, err := app.New(config.Posts)
	if err != nil {
		panic(err)
	}
	if err := application.Run(); err != nil {
		panic(err)
	}
}
