package render

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// createRenderPass builds the single-subpass pass that clears one color
// attachment and leaves it ready for presentation.
func createRenderPass(fn *DeviceFuncs, dev vulkan.Device, format vulkan.Format) (vulkan.RenderPass, error) {
	attachments := []vulkan.AttachmentDescription{{
		Format:         format,
		Samples:        vulkan.SampleCount1Bit,
		LoadOp:         vulkan.AttachmentLoadOpClear,
		StoreOp:        vulkan.AttachmentStoreOpStore,
		StencilLoadOp:  vulkan.AttachmentLoadOpDontCare,
		StencilStoreOp: vulkan.AttachmentStoreOpDontCare,
		InitialLayout:  vulkan.ImageLayoutUndefined,
		FinalLayout:    vulkan.ImageLayoutPresentSrc,
	}}
	colorRefs := []vulkan.AttachmentReference{{
		Attachment: 0,
		Layout:     vulkan.ImageLayoutColorAttachmentOptimal,
	}}
	subpasses := []vulkan.SubpassDescription{{
		PipelineBindPoint:    vulkan.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    colorRefs,
	}}
	// The image must not be written before the acquire semaphore wait at the
	// color output stage has completed.
	dependencies := []vulkan.SubpassDependency{{
		SrcSubpass:    vulkan.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vulkan.PipelineStageFlags(vulkan.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vulkan.PipelineStageFlags(vulkan.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstAccessMask: vulkan.AccessFlags(vulkan.AccessColorAttachmentReadBit | vulkan.AccessColorAttachmentWriteBit),
	}}

	info := vulkan.RenderPassCreateInfo{
		SType:           vulkan.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}
	var renderPass vulkan.RenderPass
	if err := NewError(fn.CreateRenderPass(dev, &info, nil, &renderPass)); err != nil {
		return nil, errors.Wrap(err, "create render pass")
	}
	return renderPass, nil
}

// loadShader reads SPIR-V through the asset loader and wraps it in a shader
// module. The asset is freed before returning.
func (r *Renderer) loadShader(name string) (vulkan.ShaderModule, error) {
	code, err := r.assets.Load(name)
	if err != nil {
		return nil, errors.Wrapf(err, "load shader %s", name)
	}
	defer r.assets.Free(name)
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errors.Errorf("shader %s: %d bytes is not SPIR-V", name, len(code))
	}

	info := vulkan.ShaderModuleCreateInfo{
		SType:    vulkan.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    spirvWords(code),
	}
	var module vulkan.ShaderModule
	if err := NewError(r.dev.CreateShaderModule(r.device, &info, nil, &module)); err != nil {
		return nil, errors.Wrapf(err, "create shader module %s", name)
	}
	return module, nil
}

func spirvWords(code []byte) []uint32 {
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words
}

// createPipeline builds the pipeline layout and the fixed-function triangle
// pipeline. Both are pushed onto undo. The shader modules only live for the
// duration of the call.
func (r *Renderer) createPipeline(renderPass vulkan.RenderPass, extent vulkan.Extent2D, undo *cleanup) (vulkan.PipelineLayout, vulkan.Pipeline, error) {
	fn, dev := r.dev, r.device

	vert, err := r.loadShader(r.vertexShader)
	if err != nil {
		return nil, nil, err
	}
	defer fn.DestroyShaderModule(dev, vert, nil)
	frag, err := r.loadShader(r.fragmentShader)
	if err != nil {
		return nil, nil, err
	}
	defer fn.DestroyShaderModule(dev, frag, nil)

	layoutInfo := vulkan.PipelineLayoutCreateInfo{
		SType: vulkan.StructureTypePipelineLayoutCreateInfo,
	}
	var layout vulkan.PipelineLayout
	if err := NewError(fn.CreatePipelineLayout(dev, &layoutInfo, nil, &layout)); err != nil {
		return nil, nil, errors.Wrap(err, "create pipeline layout")
	}
	undo.push(func() { fn.DestroyPipelineLayout(dev, layout, nil) })

	stages := []vulkan.PipelineShaderStageCreateInfo{
		{
			SType:  vulkan.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vulkan.ShaderStageVertexBit,
			Module: vert,
			PName:  cString("main"),
		},
		{
			SType:  vulkan.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vulkan.ShaderStageFragmentBit,
			Module: frag,
			PName:  cString("main"),
		},
	}
	vertexInput := vulkan.PipelineVertexInputStateCreateInfo{
		SType: vulkan.StructureTypePipelineVertexInputStateCreateInfo,
	}
	inputAssembly := vulkan.PipelineInputAssemblyStateCreateInfo{
		SType:    vulkan.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: vulkan.PrimitiveTopologyTriangleList,
	}
	viewportState := vulkan.PipelineViewportStateCreateInfo{
		SType:         vulkan.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports: []vulkan.Viewport{{
			Width:    float32(extent.Width),
			Height:   float32(extent.Height),
			MinDepth: 0,
			MaxDepth: 1,
		}},
		ScissorCount: 1,
		PScissors: []vulkan.Rect2D{{
			Offset: vulkan.Offset2D{X: 0, Y: 0},
			Extent: extent,
		}},
	}
	rasterizer := vulkan.PipelineRasterizationStateCreateInfo{
		SType:       vulkan.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vulkan.PolygonModeFill,
		LineWidth:   1,
		CullMode:    vulkan.CullModeFlags(vulkan.CullModeBackBit),
		FrontFace:   vulkan.FrontFaceClockwise,
	}
	multisample := vulkan.PipelineMultisampleStateCreateInfo{
		SType:                vulkan.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vulkan.SampleCount1Bit,
		MinSampleShading:     1,
	}
	blendAttachments := []vulkan.PipelineColorBlendAttachmentState{{
		BlendEnable: vulkan.False,
		ColorWriteMask: vulkan.ColorComponentFlags(
			vulkan.ColorComponentRBit | vulkan.ColorComponentGBit |
				vulkan.ColorComponentBBit | vulkan.ColorComponentABit),
	}}
	colorBlend := vulkan.PipelineColorBlendStateCreateInfo{
		SType:           vulkan.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vulkan.False,
		LogicOp:         vulkan.LogicOpCopy,
		AttachmentCount: uint32(len(blendAttachments)),
		PAttachments:    blendAttachments,
	}

	infos := []vulkan.GraphicsPipelineCreateInfo{{
		SType:               vulkan.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisample,
		PColorBlendState:    &colorBlend,
		Layout:              layout,
		RenderPass:          renderPass,
		Subpass:             0,
		BasePipelineIndex:   -1,
	}}
	pipelines := make([]vulkan.Pipeline, 1)
	if err := NewError(fn.CreateGraphicsPipelines(dev, nil, 1, infos, nil, pipelines)); err != nil {
		return nil, nil, errors.Wrap(err, "create graphics pipeline")
	}
	pipeline := pipelines[0]
	undo.push(func() { fn.DestroyPipeline(dev, pipeline, nil) })
	return layout, pipeline, nil
}
