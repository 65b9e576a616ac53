package main

func main() {
	NewApp().Run()
}
