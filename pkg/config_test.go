package syncversion

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"
)

// writeFile creates path (and its parent directories) under root.
func writeFile(t *testing.T, root, path, content string) string {
	t.Helper()
	full := filepath.Join(root, path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return full
}

func TestDefaultConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "ios/App/Info.plist", testPlist)
	writeFile(t, root, "ios/AppTests/Info.plist", testPlist)
	writeFile(t, root, "android/app/build.gradle.kts", testGradleKts)

	cfg := DefaultConfig(root)
	if cfg.Package != "package.json" || cfg.MaxBuilds != DefaultMaxBuilds {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if want := []string{filepath.Join("ios", "App", "Info.plist")}; !slices.Equal(cfg.IOS.Plists, want) {
		t.Errorf("IOS.Plists = %v, expected %v", cfg.IOS.Plists, want)
	}
	if want := filepath.Join("android", "app", "build.gradle.kts"); cfg.Android.Gradle != want {
		t.Errorf("Android.Gradle = %q, expected %q", cfg.Android.Gradle, want)
	}
	if want := filepath.Join("android", "app", "src", "main", "AndroidManifest.xml"); cfg.Android.Manifest != want {
		t.Errorf("Android.Manifest = %q, expected %q", cfg.Android.Manifest, want)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	root := t.TempDir()
	cfg, err := LoadConfig(root, "")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig(root)) {
		t.Errorf("LoadConfig without a file = %+v, expected defaults", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, DefaultConfigFile, `package: app/package.json
max_builds: 50
ios:
  plists:
    - ios/One/Info.plist
    - ios/Two/Info.plist
android:
  gradle: android/app/build.gradle
`)

	cfg, err := LoadConfig(root, "")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	expected := &Config{
		Package:   "app/package.json",
		MaxBuilds: 50,
		IOS:       IOSConfig{Plists: []string{"ios/One/Info.plist", "ios/Two/Info.plist"}},
		Android: AndroidConfig{
			Gradle:   "android/app/build.gradle",
			Manifest: filepath.Join("android", "app", "src", "main", "AndroidManifest.xml"),
		},
	}
	if !reflect.DeepEqual(cfg, expected) {
		t.Errorf("LoadConfig = %+v, expected %+v", cfg, expected)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "custom.yml", "package: [unclosed\n")
	if _, err := LoadConfig(root, "custom.yml"); err == nil {
		t.Error("expected an error for an invalid config file")
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{
		Package:   "package.json",
		MaxBuilds: 80,
		IOS:       IOSConfig{Plists: []string{"ios/App/Info.plist"}},
		Android:   AndroidConfig{Gradle: "android/app/build.gradle", Manifest: "android/app/src/main/AndroidManifest.xml"},
	}
	path := filepath.Join(root, DefaultConfigFile)
	if err := WriteConfig(path, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}
	got, err := LoadConfig(root, path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("round trip = %+v, expected %+v", got, cfg)
	}
}

func TestConfigTargets(t *testing.T) {
	cfg := &Config{
		IOS:     IOSConfig{Plists: []string{"ios/A/Info.plist", "/abs/Info.plist"}},
		Android: AndroidConfig{Gradle: "android/app/build.gradle", Manifest: "android/app/AndroidManifest.xml"},
	}

	targets, err := cfg.Targets("/root", nil)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, target := range targets {
		got = append(got, target.Platform()+":"+target.Path())
	}
	expected := []string{
		"ios:" + filepath.Join("/root", "ios/A/Info.plist"),
		"ios:/abs/Info.plist",
		"android:" + filepath.Join("/root", "android/app/build.gradle"),
		"android:" + filepath.Join("/root", "android/app/AndroidManifest.xml"),
	}
	if !slices.Equal(got, expected) {
		t.Errorf("Targets = %v, expected %v", got, expected)
	}

	targets, err = cfg.Targets("/root", []string{"android"})
	if err != nil {
		t.Fatal(err)
	}
	if len(targets) != 2 || targets[0].Platform() != "android" {
		t.Errorf("android only Targets = %v", targets)
	}

	if _, err := cfg.Targets("/root", []string{"windows"}); err == nil {
		t.Error("expected an error for an unknown platform")
	}
}
