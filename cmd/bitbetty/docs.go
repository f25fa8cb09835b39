package main

//go:generate swag init -g cmd/bitbetty/main.go -o docs

// @title           BitBetty API
// @version         0.1.0
// @description     Submit directional BTC guesses and read scores.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
