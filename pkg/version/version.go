package version

var (
	// These values are injected during build - DO NOT MODIFY
	Version   = "VERSION_PLACEHOLDER"
	CommitSHA = "COMMIT_PLACEHOLDER"
)

// Info is the JSON shape served by the API's /version route.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

func Current() Info {
	return Info{Name: "NotesFlash", Version: Version, Commit: CommitSHA}
}

func GetVersionInfo() string {
	return "NotesFlash " + Version
}

func GetDetailedVersionInfo() string {
	info := Current()
	return info.Name + "\n" +
		"Version:  " + info.Version + "\n" +
		"Commit:   " + info.Commit + "\n"
}
