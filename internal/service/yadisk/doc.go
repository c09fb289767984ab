// Package yadisk provides browsing and downloading of public Yandex Disk resources.
// It aggregates paginated listings, caches them for a short time
// and saves selected files to local storage, reporting every file separately.
package yadisk
