package datasets

import (
	"strings"

	"github.com/projecteru2/dsfetch/auth/cognito"
	"github.com/projecteru2/dsfetch/config"
	"github.com/projecteru2/dsfetch/resolve"
	"github.com/projecteru2/dsfetch/types"
)

const nuScenesName = "nuscenes"

var nuScenesFiles = []struct {
	file, md5, description string
}{
	{"v1.0-test_meta.tgz", "b0263f5c41b780a5a10ede2da99539eb", "Test set metadata"},
	{"v1.0-test_blobs.tgz", "e065445b6019ecc15c70ad9d99c47b33", "Test set sensor data"},
	{"v1.0-trainval01_blobs.tgz", "cbf32d2ea6996fc599b32f724e7ce8f2", "Trainval sensor data, part 1"},
	{"v1.0-trainval02_blobs.tgz", "aeecea4878ec3831d316b382bb2f72da", "Trainval sensor data, part 2"},
	{"v1.0-trainval03_blobs.tgz", "595c29528351060f94c935e3aaf7b995", "Trainval sensor data, part 3"},
	{"v1.0-trainval04_blobs.tgz", "b55eae9b4aa786b478858a3fc92fb72d", "Trainval sensor data, part 4"},
	{"v1.0-trainval05_blobs.tgz", "1c815ed607a11be7446dcd4ba0e71ed0", "Trainval sensor data, part 5"},
	{"v1.0-trainval06_blobs.tgz", "7273eeea36e712be290472859063a678", "Trainval sensor data, part 6"},
	{"v1.0-trainval07_blobs.tgz", "46674d2b2b852b7a857d2c9a87fc755f", "Trainval sensor data, part 7"},
	{"v1.0-trainval08_blobs.tgz", "37524bd4edee2ab99678909334313adf", "Trainval sensor data, part 8"},
	{"v1.0-trainval09_blobs.tgz", "a7fcd6d9c0934e4052005aa0b84615c0", "Trainval sensor data, part 9"},
	{"v1.0-trainval10_blobs.tgz", "31e795f2c13f62533c727119b822d739", "Trainval sensor data, part 10"},
	{"v1.0-trainval_meta.tgz", "537d3954ec34e5bcb89a35d4f6fb0d4a", "Trainval metadata"},
}

// NuScenes returns the v1.0 full dataset archives. Downloading needs a
// nuScenes account: a Cognito login yields the bearer token the archive
// API wants before it hands out signed URLs.
func NuScenes(conf *config.Config) *Manifest {
	nc := conf.NuScenes
	m := &Manifest{
		Name:        nuScenesName,
		Description: "nuScenes v1.0 full dataset (login required)",
		Auth: cognito.New(cognito.Options{
			Endpoint: nc.AuthEndpoint,
			ClientID: nc.ClientID,
			Username: nc.Email,
			Password: nc.Password,
		}),
		Resolver: resolve.NewNuScenes(nc.APIBase, nc.Region, nil),
	}
	for _, f := range nuScenesFiles {
		m.Entries = append(m.Entries, types.Entry{
			Name:        nuScenesEntryName(f.file),
			Description: f.description,
			Locator:     f.file,
			Path:        conf.ArtifactPath(nuScenesName, f.file),
			ExtractDir:  conf.DatasetDir(nuScenesName),
			MD5:         f.md5,
			Archive:     types.ArchiveTGZ,
		})
	}
	return m
}

// nuScenesEntryName maps v1.0-trainval01_blobs.tgz to trainval01_blobs.
func nuScenesEntryName(file string) string {
	return strings.TrimSuffix(strings.TrimPrefix(file, "v1.0-"), ".tgz")
}
