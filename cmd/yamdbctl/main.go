// Package main provides yamdbctl, the YaMDb administration tool.
package main

func main() {
	Execute()
}
