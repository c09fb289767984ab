// Package yadisk is a client for the public resources part of the Yandex Disk REST API.
// It lists the contents of a shared link, resolves direct download links and
// streams file contents. Every failure is reported as a *RemoteAPIError whose
// Kind tells the caller whether retrying makes sense; the client itself never retries.
package yadisk
