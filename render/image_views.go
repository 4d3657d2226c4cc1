package render

type ImageViewType int32

const ImageViewType2D ImageViewType = 1

type ComponentSwizzle int32

const ComponentSwizzleIdentity ComponentSwizzle = 0

type ComponentMapping struct {
	R, G, B, A ComponentSwizzle
}

type ImageAspect uint32

const ImageAspectColor ImageAspect = 0x1

type ImageViewOptions struct {
	Image      Image
	Format     Format
	ViewType   ImageViewType
	Components ComponentMapping

	Aspect         ImageAspect
	BaseMipLevel   int
	LevelCount     int
	BaseArrayLayer int
	LayerCount     int
}

func colorViewOptions(image Image, format Format) ImageViewOptions {
	return ImageViewOptions{
		Image:    image,
		Format:   format,
		ViewType: ImageViewType2D,
		Components: ComponentMapping{
			R: ComponentSwizzleIdentity,
			G: ComponentSwizzleIdentity,
			B: ComponentSwizzleIdentity,
			A: ComponentSwizzleIdentity,
		},
		Aspect:         ImageAspectColor,
		BaseMipLevel:   0,
		LevelCount:     1,
		BaseArrayLayer: 0,
		LayerCount:     1,
	}
}

// ImageView owns one view of a swapchain image.
type ImageView struct {
	swapchain *SwapchainContext
	handle    ImageViewHandle
	image     Image
	destroyed bool
}

func (v *ImageView) Handle() ImageViewHandle { return v.handle }

func (v *ImageView) Image() Image { return v.image }

func (v *ImageView) Destroy() {
	if v == nil || v.destroyed {
		return
	}

	v.handle.Destroy()
	v.handle = nil
	v.destroyed = true
	v.swapchain.views--
}

// CreateImageViews creates one color view per swapchain image, in image
// order. If any view fails the ones already created are destroyed.
func CreateImageViews(sc *SwapchainContext) ([]*ImageView, error) {
	views := make([]*ImageView, 0, len(sc.images))
	for i, image := range sc.images {
		handle, err := sc.device.device.CreateImageView(colorViewOptions(image, sc.config.ImageFormat))
		if err != nil {
			DestroyImageViews(views)
			return nil, stageError(ErrImageViewCreationFailed, err, "create view for swapchain image %d of %d", i, len(sc.images))
		}

		sc.views++
		views = append(views, &ImageView{
			swapchain: sc,
			handle:    handle,
			image:     image,
		})
	}

	sc.logger.WithField("views", len(views)).Debug("image views created")
	return views, nil
}

// DestroyImageViews destroys views in reverse creation order.
func DestroyImageViews(views []*ImageView) {
	for i := len(views) - 1; i >= 0; i-- {
		views[i].Destroy()
	}
}
