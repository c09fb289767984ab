// Package app wires the Yandex Disk client, the listing cache and the browse and download
// services together and runs the list, download and runserver commands on top of them.
package app
