package datasets

import (
	"github.com/projecteru2/dsfetch/config"
	"github.com/projecteru2/dsfetch/fetch"
	"github.com/projecteru2/dsfetch/resolve"
	"github.com/projecteru2/dsfetch/types"
)

const (
	kittiName     = "kitti"
	kittiBucket   = "avg-kitti"
	kittiRegion   = "eu-central-1"
	kittiHTTPBase = "https://s3." + kittiRegion + ".amazonaws.com/" + kittiBucket + "/"
)

var kittiFiles = []struct {
	name, file, md5, description string
}{
	{"image_2", "data_object_image_2.zip", "351c61aab5caa90eb126ace1d12e6fa2", "Left color images (2D) of object data"},
	{"label_2", "data_object_label_2.zip", "e03858159cab2d3f8f2c6ed83a0d29c7", "Labels for object data (2D/3D)"},
	{"velodyne", "data_object_velodyne.zip", "8f0e5eafcf9fd1e047105c9b3d022249", "Velodyne point clouds (3D)"},
	{"calib", "data_object_calib.zip", "d2946e815a27c5d1e25f1d4f8f62a5ee", "Calibration files for object data"},
}

// KITTI returns the 3D object detection archives of the KITTI benchmark.
// The archives are public; kitti.source picks plain HTTPS or anonymous S3.
func KITTI(conf *config.Config) *Manifest {
	m := &Manifest{
		Name:        kittiName,
		Description: "KITTI 3D object detection benchmark",
		Resolver:    resolve.Static{},
	}
	useS3 := conf.KITTI.Source == "s3"
	if useS3 {
		m.Sources = []fetch.Source{fetch.NewS3Source(kittiRegion, "")}
	}
	for _, f := range kittiFiles {
		locator := kittiHTTPBase + f.file
		if useS3 {
			locator = "s3://" + kittiBucket + "/" + f.file
		}
		m.Entries = append(m.Entries, types.Entry{
			Name:        f.name,
			Description: f.description,
			Locator:     locator,
			Path:        conf.ArtifactPath(kittiName, f.file),
			ExtractDir:  conf.DatasetDir(kittiName),
			MD5:         f.md5,
			Archive:     types.ArchiveZip,
		})
	}
	return m
}
