package main

import "github.com/arulyan/cfauth/app"

func main() {
	app.New(nil).Run()
}
