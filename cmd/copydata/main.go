// Command copydata runs the copy-data charm: it dispatches hook and action
// events against relation data, reports the unit status, and serves an
// inspection API and terminal dashboard.
package main

func main() {
	Execute()
}
