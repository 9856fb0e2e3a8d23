package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/chocobridge/internal/choco"
	"github.com/blackwell-systems/chocobridge/internal/feedstore"
	"github.com/blackwell-systems/chocobridge/internal/reference"
)

// fakeClient scripts engine responses and progress event streams.
type fakeClient struct {
	available []choco.Package
	installed []choco.Package
	feeds     []choco.FeedConfiguration
	events    []choco.ProgressEvent
	fail      error

	feedCalls    int
	installCalls int
	removeCalls  int
}

func (f *fakeClient) InitializeSession(ctx context.Context, opts choco.SessionOptions) error {
	return f.fail
}

func (f *fakeClient) SetConfiguration(ctx context.Context, key, value string) error { return f.fail }

func (f *fakeClient) GetFeedConfigurations(ctx context.Context) ([]choco.FeedConfiguration, error) {
	f.feedCalls++
	return f.feeds, f.fail
}

func (f *fakeClient) AddFeedConfiguration(ctx context.Context, feed choco.FeedConfiguration) error {
	return f.fail
}

func (f *fakeClient) RemoveFeedConfiguration(ctx context.Context, name string) error { return f.fail }

func (f *fakeClient) UpdateFeed(ctx context.Context, feed choco.FeedConfiguration) error {
	return f.fail
}

func (f *fakeClient) GetAvailablePackages(ctx context.Context, filter choco.SearchFilter, progress choco.ProgressFunc) ([]choco.Package, error) {
	f.emit(progress)
	return f.available, f.fail
}

func (f *fakeClient) GetInstalledPackages(ctx context.Context, filter choco.SearchFilter) ([]choco.Package, error) {
	return f.installed, f.fail
}

func (f *fakeClient) DownloadPackage(ctx context.Context, name, version, destDir string, progress choco.ProgressFunc) (string, error) {
	f.emit(progress)
	if f.fail != nil {
		return "", f.fail
	}
	return destDir + "/" + name + ".nupkg", nil
}

func (f *fakeClient) InstallPackages(ctx context.Context, names []string, version string, progress choco.ProgressFunc) error {
	f.installCalls++
	f.emit(progress)
	return f.fail
}

func (f *fakeClient) RemovePackages(ctx context.Context, names []string, progress choco.ProgressFunc) error {
	f.removeCalls++
	f.emit(progress)
	return f.fail
}

func (f *fakeClient) emit(progress choco.ProgressFunc) {
	if progress == nil {
		return
	}
	for _, ev := range f.events {
		progress(ev)
	}
}

// identity is one YieldSoftwareIdentity call.
type identity struct {
	token, name, version, source, summary string
}

// packageSource is one YieldPackageSource call.
type packageSource struct {
	name, location      string
	trusted, registered bool
}

// fakeHost records every callback in order.
type fakeHost struct {
	nextID     int
	starts     int
	completes  []bool
	progresses int
	calls      []string

	identities  []identity
	sources     []packageSource
	warningsLog []string
	errorsLog   []string
}

func (h *fakeHost) StartActivity(parentID int, label string) int {
	h.nextID++
	h.starts++
	h.calls = append(h.calls, fmt.Sprintf("start:%d:%s", parentID, label))
	return h.nextID
}

func (h *fakeHost) ReportProgress(activityID, percent int, message string) {
	h.progresses++
	h.calls = append(h.calls, fmt.Sprintf("progress:%d:%d:%s", activityID, percent, message))
}

func (h *fakeHost) CompleteActivity(activityID int, success bool) {
	h.completes = append(h.completes, success)
	h.calls = append(h.calls, fmt.Sprintf("complete:%d:%t", activityID, success))
}

func (h *fakeHost) YieldSoftwareIdentity(token, name, version, source, summary string) {
	h.identities = append(h.identities, identity{token, name, version, source, summary})
}

func (h *fakeHost) YieldPackageSource(name, location string, trusted, registered bool) {
	h.sources = append(h.sources, packageSource{name, location, trusted, registered})
}

func (h *fakeHost) Verbose(format string, args ...any) {}

func (h *fakeHost) Warning(format string, args ...any) {
	h.warningsLog = append(h.warningsLog, fmt.Sprintf(format, args...))
}

func (h *fakeHost) Error(format string, args ...any) {
	h.errorsLog = append(h.errorsLog, fmt.Sprintf(format, args...))
}

func setupStore(t *testing.T) *feedstore.Store {
	t.Helper()
	s, err := feedstore.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFindPackageYieldsEncodedTokens(t *testing.T) {
	client := &fakeClient{
		available: []choco.Package{
			{Name: "git", Version: "2.44.0", Summary: "Distributed version control"},
			{Name: "gittools", Version: "1.2.3"},
		},
		events: []choco.ProgressEvent{{Action: "Searching", Percent: 50, Message: "feeds"}},
	}
	host := &fakeHost{}
	p := New(client, nil, Config{})

	if err := p.FindPackage(context.Background(), host, "git", "", "", "", ""); err != nil {
		t.Fatalf("FindPackage failed: %v", err)
	}

	if len(host.identities) != 2 {
		t.Fatalf("yielded %d identities, want 2", len(host.identities))
	}
	// Search progress goes to the verbose diagnostic channel, never to an
	// activity.
	if host.starts != 0 {
		t.Errorf("find opened %d activities, want 0", host.starts)
	}

	first := host.identities[0]
	wantToken := reference.Encode("git", "2.44.0", "Distributed version control")
	if first.token != wantToken {
		t.Errorf("token = %q, want %q", first.token, wantToken)
	}
	if first.source != ProviderName {
		t.Errorf("source = %q, want %q", first.source, ProviderName)
	}

	// The token round-trips back to the name the engine reported.
	name, err := reference.Name(first.token)
	if err != nil || name != "git" {
		t.Errorf("decoded name = (%q, %v), want (git, nil)", name, err)
	}
}

func TestFindPackageEngineFailure(t *testing.T) {
	client := &fakeClient{fail: choco.ErrEngineFailure}
	host := &fakeHost{}
	p := New(client, nil, Config{})

	err := p.FindPackage(context.Background(), host, "git", "", "", "", "")
	if !errors.Is(err, choco.ErrEngineFailure) {
		t.Errorf("error = %v, want ErrEngineFailure", err)
	}
	if len(host.errorsLog) == 0 {
		t.Error("engine failure was not reported to the host diagnostic channel")
	}
	if len(host.identities) != 0 {
		t.Errorf("failed search yielded identities: %+v", host.identities)
	}
}

func TestInstallPackageRotatesActivities(t *testing.T) {
	client := &fakeClient{
		events: []choco.ProgressEvent{
			{Action: "Downloading", Percent: 10, Message: "git"},
			{Action: "Downloading", Percent: 50, Message: "git"},
			{Action: "Installing", Percent: 10, Message: "git"},
			{Action: "Installing", Percent: 100, Message: "git"},
		},
	}
	host := &fakeHost{}
	p := New(client, nil, Config{ParentActivityID: 42})

	token := reference.Encode("git", "2.44.0", "vcs")
	if err := p.InstallPackage(context.Background(), host, token); err != nil {
		t.Fatalf("InstallPackage failed: %v", err)
	}

	if host.starts != 2 {
		t.Errorf("StartActivity calls = %d, want 2", host.starts)
	}
	if len(host.completes) != 2 {
		t.Errorf("CompleteActivity calls = %d, want 2", len(host.completes))
	}
	if host.progresses != 4 {
		t.Errorf("ReportProgress calls = %d, want 4", host.progresses)
	}
	for i, ok := range host.completes {
		if !ok {
			t.Errorf("completion %d reported failure on a successful install", i)
		}
	}

	// Activities start under the configured parent with the verb label.
	if !strings.HasPrefix(host.calls[0], "start:42:Installing git") {
		t.Errorf("first call = %q, want start under parent 42", host.calls[0])
	}

	if len(host.identities) != 1 || host.identities[0].token != token {
		t.Errorf("identities = %+v, want the original token yielded once", host.identities)
	}
}

func TestInstallPackageFailureStillYields(t *testing.T) {
	client := &fakeClient{
		events: []choco.ProgressEvent{{Action: "Downloading", Percent: 30, Message: "git"}},
		fail:   choco.ErrEngineFailure,
	}
	host := &fakeHost{}
	p := New(client, nil, Config{})

	token := reference.Encode("git", "2.44.0", "vcs")
	err := p.InstallPackage(context.Background(), host, token)
	if !errors.Is(err, choco.ErrEngineFailure) {
		t.Fatalf("error = %v, want ErrEngineFailure", err)
	}

	if len(host.completes) != 1 || host.completes[0] {
		t.Errorf("completes = %v, want one failed completion", host.completes)
	}
	if len(host.identities) != 1 {
		t.Fatalf("identities = %+v, want best-effort identity despite failure", host.identities)
	}
	if host.identities[0].name != "git" || host.identities[0].version != "2.44.0" {
		t.Errorf("best-effort identity = %+v", host.identities[0])
	}
	if len(host.errorsLog) == 0 {
		t.Error("failure was not surfaced through the diagnostic channel")
	}
}

func TestInstallPackageMalformedToken(t *testing.T) {
	client := &fakeClient{}
	host := &fakeHost{}
	p := New(client, nil, Config{})

	err := p.InstallPackage(context.Background(), host, "")
	if !errors.Is(err, reference.ErrMalformedToken) {
		t.Fatalf("error = %v, want ErrMalformedToken", err)
	}
	if client.installCalls != 0 {
		t.Error("engine was invoked for a malformed token")
	}
	if host.starts != 0 {
		t.Error("activity was opened for a malformed token")
	}
	if len(host.errorsLog) == 0 {
		t.Error("malformed token was not reported to the diagnostic channel")
	}
}

func TestInstallPackageShortTokenWarns(t *testing.T) {
	client := &fakeClient{}
	host := &fakeHost{}
	p := New(client, nil, Config{})

	// Two fields decode a name and version but no summary; the operation
	// proceeds with a warning instead of failing or staying silent.
	if err := p.InstallPackage(context.Background(), host, "git|2.44.0"); err != nil {
		t.Fatalf("InstallPackage failed: %v", err)
	}

	if client.installCalls != 1 {
		t.Errorf("InstallPackages calls = %d, want 1", client.installCalls)
	}
	if len(host.warningsLog) != 1 {
		t.Fatalf("warnings = %v, want one missing-fields warning", host.warningsLog)
	}
	if !strings.Contains(host.warningsLog[0], "git|2.44.0") {
		t.Errorf("warning does not name the token: %q", host.warningsLog[0])
	}
	if len(host.errorsLog) != 0 {
		t.Errorf("short token raised errors: %v", host.errorsLog)
	}
	if len(host.identities) != 1 || host.identities[0].version != "2.44.0" {
		t.Errorf("identities = %+v, want git 2.44.0 yielded", host.identities)
	}
}

func TestUninstallPackageUsesRemove(t *testing.T) {
	client := &fakeClient{
		events: []choco.ProgressEvent{{Action: "Removing", Percent: 50, Message: "jq"}},
	}
	host := &fakeHost{}
	p := New(client, nil, Config{})

	token := reference.Encode("jq", "1.7", "json tool")
	if err := p.UninstallPackage(context.Background(), host, token); err != nil {
		t.Fatalf("UninstallPackage failed: %v", err)
	}

	if client.removeCalls != 1 {
		t.Errorf("RemovePackages calls = %d, want 1", client.removeCalls)
	}
	if !strings.HasPrefix(host.calls[0], "start:0:Uninstalling jq") {
		t.Errorf("first call = %q, want uninstall activity", host.calls[0])
	}
}

func TestDownloadPackageSingleFlatActivity(t *testing.T) {
	client := &fakeClient{
		events: []choco.ProgressEvent{
			{Action: "Connecting", Percent: 5, Message: "feed"},
			{Action: "Downloading", Percent: 60, Message: "git.nupkg"},
			{Action: "Verifying", Percent: 95, Message: "git.nupkg"},
		},
	}
	host := &fakeHost{}
	p := New(client, nil, Config{})

	token := reference.Encode("git", "2.44.0", "vcs")
	path, err := p.DownloadPackage(context.Background(), host, token, t.TempDir())
	if err != nil {
		t.Fatalf("DownloadPackage failed: %v", err)
	}
	if !strings.HasSuffix(path, "git.nupkg") {
		t.Errorf("archive path = %q, want the engine's download path", path)
	}

	// Action-code changes do not rotate the download activity.
	if host.starts != 1 {
		t.Errorf("StartActivity calls = %d, want 1", host.starts)
	}
	if len(host.completes) != 1 || !host.completes[0] {
		t.Errorf("completes = %v, want one successful completion", host.completes)
	}
	if host.progresses != 3 {
		t.Errorf("ReportProgress calls = %d, want 3", host.progresses)
	}
}

func TestDownloadPackageFailureWithoutEvents(t *testing.T) {
	client := &fakeClient{fail: choco.ErrEngineFailure}
	host := &fakeHost{}
	p := New(client, nil, Config{})

	token := reference.Encode("git", "2.44.0", "vcs")
	_, err := p.DownloadPackage(context.Background(), host, token, t.TempDir())
	if !errors.Is(err, choco.ErrEngineFailure) {
		t.Fatalf("error = %v, want ErrEngineFailure", err)
	}

	// The flat activity is opened before the engine call, so a failure with
	// zero progress events still produces a matched pair.
	if host.starts != 1 {
		t.Errorf("StartActivity calls = %d, want 1", host.starts)
	}
	if len(host.completes) != 1 || host.completes[0] {
		t.Errorf("completes = %v, want one failed completion", host.completes)
	}
	if len(host.identities) != 1 {
		t.Errorf("identities = %+v, want best-effort identity", host.identities)
	}
}

func TestGetInstalledPackagesYields(t *testing.T) {
	client := &fakeClient{
		installed: []choco.Package{{Name: "git", Version: "2.44.0", Installed: true}},
	}
	host := &fakeHost{}
	p := New(client, nil, Config{})

	if err := p.GetInstalledPackages(context.Background(), host, "", "", "", ""); err != nil {
		t.Fatalf("GetInstalledPackages failed: %v", err)
	}
	if len(host.identities) != 1 || host.identities[0].name != "git" {
		t.Errorf("identities = %+v, want installed git", host.identities)
	}
}

func TestResolvePackageSourcesMergesTrust(t *testing.T) {
	store := setupStore(t)
	if err := store.UpsertSource(&feedstore.Source{
		Name:         "internal",
		Location:     "https://feeds.example.com/choco",
		Trusted:      true,
		RegisteredAt: time.Now(),
	}); err != nil {
		t.Fatalf("UpsertSource failed: %v", err)
	}

	client := &fakeClient{
		feeds: []choco.FeedConfiguration{
			{Name: "chocolatey", Location: "https://community.chocolatey.org/api/v2/"},
			{Name: "internal", Location: "https://feeds.example.com/choco"},
		},
	}
	host := &fakeHost{}
	p := New(client, store, Config{})

	if err := p.ResolvePackageSources(context.Background(), host); err != nil {
		t.Fatalf("ResolvePackageSources failed: %v", err)
	}

	if len(host.sources) != 2 {
		t.Fatalf("yielded %d sources, want 2", len(host.sources))
	}
	if host.sources[0].trusted || host.sources[0].registered {
		t.Errorf("preconfigured feed should be untrusted and unregistered: %+v", host.sources[0])
	}
	if !host.sources[1].trusted || !host.sources[1].registered {
		t.Errorf("registered feed lost its trust flag: %+v", host.sources[1])
	}
}

func TestResolvePackageSourcesCaches(t *testing.T) {
	client := &fakeClient{
		feeds: []choco.FeedConfiguration{{Name: "chocolatey", Location: "https://c"}},
	}
	host := &fakeHost{}
	p := New(client, nil, Config{})

	for i := 0; i < 3; i++ {
		if err := p.ResolvePackageSources(context.Background(), host); err != nil {
			t.Fatalf("ResolvePackageSources failed: %v", err)
		}
	}
	if client.feedCalls != 1 {
		t.Errorf("engine feed list fetched %d times, want 1 (cached)", client.feedCalls)
	}

	p.InvalidateSources()
	if err := p.ResolvePackageSources(context.Background(), host); err != nil {
		t.Fatalf("ResolvePackageSources failed: %v", err)
	}
	if client.feedCalls != 2 {
		t.Errorf("engine feed list fetched %d times after invalidation, want 2", client.feedCalls)
	}
}

func TestAddPackageSourcePersistsTrust(t *testing.T) {
	store := setupStore(t)
	client := &fakeClient{}
	host := &fakeHost{}
	p := New(client, store, Config{})

	if err := p.AddPackageSource(context.Background(), host, "internal", "https://feeds.example.com", true); err != nil {
		t.Fatalf("AddPackageSource failed: %v", err)
	}

	trusted, err := store.IsTrusted("internal")
	if err != nil {
		t.Fatalf("IsTrusted failed: %v", err)
	}
	if !trusted {
		t.Error("trust decision was not persisted")
	}
	if len(host.sources) != 1 || !host.sources[0].trusted {
		t.Errorf("sources = %+v, want one trusted yield", host.sources)
	}
}

func TestRemovePackageSourceClearsRegistry(t *testing.T) {
	store := setupStore(t)
	client := &fakeClient{}
	host := &fakeHost{}
	p := New(client, store, Config{})

	if err := p.AddPackageSource(context.Background(), host, "internal", "https://feeds.example.com", true); err != nil {
		t.Fatalf("AddPackageSource failed: %v", err)
	}
	if err := p.RemovePackageSource(context.Background(), host, "internal"); err != nil {
		t.Fatalf("RemovePackageSource failed: %v", err)
	}

	src, err := store.GetSource("internal")
	if err != nil {
		t.Fatalf("GetSource failed: %v", err)
	}
	if src != nil {
		t.Errorf("source survived removal: %+v", src)
	}
}

func TestInitializeProviderAssignsSession(t *testing.T) {
	store := setupStore(t)
	client := &fakeClient{}
	host := &fakeHost{}
	p := New(client, store, Config{})

	if err := p.InitializeProvider(context.Background(), host); err != nil {
		t.Fatalf("InitializeProvider failed: %v", err)
	}
	if p.SessionID() == "" {
		t.Fatal("no session id assigned")
	}

	persisted, err := store.GetMeta("session_id")
	if err != nil {
		t.Fatalf("GetMeta failed: %v", err)
	}
	if persisted != p.SessionID() {
		t.Errorf("persisted session id %q != %q", persisted, p.SessionID())
	}
}

func TestGetDynamicOptions(t *testing.T) {
	p := New(&fakeClient{}, nil, Config{})

	if opts := p.GetDynamicOptions("Package"); len(opts) == 0 {
		t.Error("Package category returned no options")
	}
	if opts := p.GetDynamicOptions("NoSuchCategory"); opts != nil {
		t.Errorf("unknown category returned %+v, want nil", opts)
	}
}
