package build

// pipeline returns the stage list of a build. Check runs stop after
// organization and never touch the output directory.
func pipeline(check bool) *Pipeline {
	emit := !check
	return NewPipeline().
		AddIf(emit, StageDef{Name: StagePrepareOutput, Produces: []Artifact{ArtifactStaging}, Fn: stagePrepareOutput}).
		Add(StageDef{Name: StageLoadTemplates, Produces: []Artifact{ArtifactTemplates, ArtifactMacros, ArtifactStrings}, Fn: stageLoadTemplates}).
		Add(StageDef{Name: StageLoadData, Produces: []Artifact{ArtifactData}, Fn: stageLoadData}).
		Add(StageDef{Name: StageParseContent, Needs: []Artifact{ArtifactMacros}, Produces: []Artifact{ArtifactRecords}, Fn: stageParseContent}).
		Add(StageDef{Name: StageCheckURLs, Needs: []Artifact{ArtifactRecords}, Produces: []Artifact{ArtifactCheckedURLs}, Fn: stageCheckURLs}).
		Add(StageDef{Name: StageLinkTranslations, Needs: []Artifact{ArtifactCheckedURLs}, Produces: []Artifact{ArtifactTranslations}, Fn: stageLinkTranslations}).
		Add(StageDef{Name: StageOrganize, Needs: []Artifact{ArtifactTranslations, ArtifactData, ArtifactStrings}, Produces: []Artifact{ArtifactViews}, Fn: stageOrganize}).
		AddIf(emit, StageDef{Name: StageEmitPages, Needs: []Artifact{ArtifactStaging, ArtifactTemplates, ArtifactViews}, Produces: []Artifact{ArtifactPages}, Fn: stageEmitPages}).
		AddIf(emit, StageDef{Name: StageEmitMirrors, Needs: []Artifact{ArtifactStaging, ArtifactCheckedURLs}, Fn: stageEmitMirrors}).
		AddIf(emit, StageDef{Name: StageEmitIndexes, Needs: []Artifact{ArtifactStaging, ArtifactTemplates, ArtifactViews}, Produces: []Artifact{ArtifactIndexes}, Fn: stageEmitIndexes}).
		AddIf(emit, StageDef{Name: StageEmitFeeds, Needs: []Artifact{ArtifactStaging, ArtifactViews}, Fn: stageEmitFeeds}).
		AddIf(emit, StageDef{Name: StageEmitSitemap, Needs: []Artifact{ArtifactStaging, ArtifactViews}, Fn: stageEmitSitemap}).
		AddIf(emit, StageDef{Name: StageEmitDiscovery, Needs: []Artifact{ArtifactStaging, ArtifactViews}, Fn: stageEmitDiscovery}).
		AddIf(emit, StageDef{Name: StageEmitSearchIndex, Needs: []Artifact{ArtifactStaging, ArtifactViews}, Fn: stageEmitSearchIndex}).
		AddIf(emit, StageDef{Name: StageCopyStatic, Needs: []Artifact{ArtifactStaging, ArtifactPages, ArtifactIndexes}, Produces: []Artifact{ArtifactStatic}, Fn: stageCopyStatic}).
		AddIf(emit, StageDef{Name: StageProcessImages, Needs: []Artifact{ArtifactPages, ArtifactStatic}, Fn: stageProcessImages}).
		AddIf(emit, StageDef{Name: StagePostProcessHTML, Needs: []Artifact{ArtifactPages, ArtifactIndexes}, Fn: stagePostProcessHTML}).
		AddIf(emit, StageDef{Name: StageFinalizeOutput, Needs: []Artifact{ArtifactStaging}, Produces: []Artifact{ArtifactSite}, Fn: stageFinalizeOutput})
}
