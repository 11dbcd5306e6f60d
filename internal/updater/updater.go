package updater

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const releaseURL = "https://api.github.com/repos/steelproxy/twitta/releases/latest"

// Updater checks the project's GitHub releases for a newer version
type Updater struct {
	client *resty.Client
}

type releaseResponse struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// New creates a new update checker
func New() *Updater {
	return &Updater{
		client: resty.New().
			SetTimeout(15 * time.Second).
			SetHeader("User-Agent", "twitta/1.0"),
	}
}

// CheckForUpdate compares the running version against the latest GitHub
// release and logs the outcome. It never interrupts the agent; a failed
// check only logs and the current version keeps running.
func (u *Updater) CheckForUpdate(currentVersion string) {
	latest, url, err := u.latestRelease()
	if err != nil {
		logrus.Errorf("Unexpected error occurred while checking for updates: %v", err)
		logrus.Info("Proceeding with current version...")
		return
	}

	if !newerThan(latest, currentVersion) {
		logrus.Infof("Already running latest version %s", currentVersion)
		return
	}

	logrus.Infof("A newer version %s is available: %s", latest, url)
}

func (u *Updater) latestRelease() (version, url string, err error) {
	resp, err := u.client.R().Get(releaseURL)
	if err != nil {
		return "", "", err
	}

	if resp.StatusCode() != 200 {
		return "", "", fmt.Errorf("failed to fetch release info: status %d", resp.StatusCode())
	}

	var release releaseResponse
	if err := json.Unmarshal(resp.Body(), &release); err != nil {
		return "", "", fmt.Errorf("failed to parse release info: %w", err)
	}

	return strings.TrimPrefix(release.TagName, "v"), release.HTMLURL, nil
}

// newerThan reports whether version a is strictly newer than b, using
// dotted numeric comparison. Unparsable segments compare as zero.
func newerThan(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	for i := 0; i < len(as) || i < len(bs); i++ {
		var an, bn int
		if i < len(as) {
			an, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bn, _ = strconv.Atoi(bs[i])
		}
		if an != bn {
			return an > bn
		}
	}

	return false
}
