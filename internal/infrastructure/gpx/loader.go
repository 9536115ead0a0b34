package gpx

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"sort"

	"github.com/spf13/afero"
	gpxgo "github.com/tkrajina/gpxgo/gpx"
	"go.uber.org/zap"

	"github.com/route-reconstructor/internal/config"
	"github.com/route-reconstructor/internal/domain"
	"github.com/route-reconstructor/internal/domain/repository"
	"github.com/route-reconstructor/internal/pkg/errors"
	"github.com/route-reconstructor/internal/pkg/utils"
	"github.com/route-reconstructor/internal/pkg/validator"
)

type loader struct {
	fs     afero.Fs
	logger *zap.Logger
}

// NewLoader создает загрузчик GPX ассетов из каталога cfg.Dir
func NewLoader(cfg *config.AssetConfig, logger *zap.Logger) repository.GPXLoader {
	return NewLoaderWithFs(afero.NewBasePathFs(afero.NewOsFs(), cfg.Dir), logger)
}

// NewLoaderWithFs создает загрузчик поверх произвольной файловой системы
func NewLoaderWithFs(fsys afero.Fs, logger *zap.Logger) repository.GPXLoader {
	return &loader{
		fs:     afero.NewReadOnlyFs(fsys),
		logger: logger,
	}
}

// Load читает ассет по имени и разбирает его
func (l *loader) Load(ctx context.Context, name string) (*domain.GPXDocument, error) {
	if !validator.IsAssetName(name) {
		return nil, errors.ErrInvalidAssetName.WithMessage(fmt.Sprintf("invalid GPX asset name %q", name))
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.ErrAssetRead.Wrap(err)
	}

	f, err := l.fs.Open(name)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("GPX asset not found", zap.String("asset", name))
			return nil, errors.ErrAssetNotFound.Wrap(err).WithMessage(fmt.Sprintf("GPX asset %s not found", name))
		}
		l.logger.Error("Failed to open GPX asset", zap.String("asset", name), zap.Error(err))
		return nil, errors.ErrAssetRead.Wrap(err)
	}
	defer f.Close()

	return l.Parse(ctx, name, f)
}

// Parse разбирает GPX документ из reader
func (l *loader) Parse(ctx context.Context, name string, r io.Reader) (*domain.GPXDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		l.logger.Error("Failed to read GPX document", zap.String("name", name), zap.Error(err))
		return nil, errors.ErrAssetRead.Wrap(err)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.ErrAssetRead.Wrap(err)
	}

	parsed, err := gpxgo.ParseBytes(data)
	if err != nil {
		l.logger.Warn("Failed to parse GPX document", zap.String("name", name), zap.Error(err))
		return nil, errors.ErrGPXParse.Wrap(err)
	}

	doc := toDomain(name, parsed)
	if len(doc.Tracks) == 0 {
		return nil, errors.ErrGPXParse.WithMessage(fmt.Sprintf("GPX document %s has no tracks", name))
	}

	if err := validateTrack(doc.Tracks[0]); err != nil {
		l.logger.Warn("GPX track has invalid coordinates", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	l.logger.Debug("GPX document parsed",
		zap.String("name", name),
		zap.Int("tracks", len(doc.Tracks)),
		zap.Int("first_track_points", doc.Tracks[0].PointCount()))

	return doc, nil
}

// List возвращает отсортированные имена .gpx файлов в корне каталога ассетов
func (l *loader) List(ctx context.Context) ([]string, error) {
	infos, err := afero.ReadDir(l.fs, ".")
	if err != nil {
		l.logger.Error("Failed to list GPX assets", zap.Error(err))
		return nil, errors.ErrAssetRead.Wrap(err)
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() || !validator.IsAssetName(info.Name()) {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)

	return names, nil
}

// validateTrack проверяет диапазоны координат трека, который пойдёт в маршрутизацию
func validateTrack(track domain.Track) error {
	n := 0
	for _, segment := range track.Segments {
		for _, p := range segment.Points {
			if !utils.ValidateCoordinates(p.Latitude, p.Longitude) {
				return errors.ErrGPXParse.WithMessage(fmt.Sprintf(
					"track point %d has invalid coordinates %f,%f", n, p.Latitude, p.Longitude))
			}
			n++
		}
	}
	return nil
}

func toDomain(name string, g *gpxgo.GPX) *domain.GPXDocument {
	doc := &domain.GPXDocument{
		Name:   name,
		Tracks: make([]domain.Track, 0, len(g.Tracks)),
	}
	for _, t := range g.Tracks {
		track := domain.Track{
			Name:     t.Name,
			Segments: make([]domain.TrackSegment, 0, len(t.Segments)),
		}
		for _, s := range t.Segments {
			segment := domain.TrackSegment{
				Points: make([]domain.TrackPoint, 0, len(s.Points)),
			}
			for _, p := range s.Points {
				segment.Points = append(segment.Points, domain.TrackPoint{
					Latitude:  p.Latitude,
					Longitude: p.Longitude,
				})
			}
			track.Segments = append(track.Segments, segment)
		}
		doc.Tracks = append(doc.Tracks, track)
	}
	return doc
}
