package slabview

// WGSL for the three pipelines. All positions reaching the line and label
// shaders are already in world space; meshes carry a model matrix so the
// slab test can run against world coordinates.

const meshShaderWGSL = `
struct MeshUniforms {
    mvp: mat4x4<f32>,
    model: mat4x4<f32>,
    color: vec4<f32>,
    clip_axis: vec4<f32>,   // xyz axis, w > 0.5 enables the slab test
    clip_range: vec4<f32>,  // x center, y half thickness
};

@group(0) @binding(0) var<uniform> u: MeshUniforms;

struct VertexOut {
    @builtin(position) pos: vec4<f32>,
    @location(0) world_pos: vec3<f32>,
    @location(1) normal: vec3<f32>,
};

@vertex
fn vs_main(@location(0) pos: vec3<f32>, @location(1) normal: vec3<f32>) -> VertexOut {
    var out: VertexOut;
    out.pos = u.mvp * vec4<f32>(pos, 1.0);
    out.world_pos = (u.model * vec4<f32>(pos, 1.0)).xyz;
    out.normal = normalize((u.model * vec4<f32>(normal, 0.0)).xyz);
    return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    if (u.clip_axis.w > 0.5) {
        let d = dot(in.world_pos, u.clip_axis.xyz);
        if (d < u.clip_range.x - u.clip_range.y || d > u.clip_range.x + u.clip_range.y) {
            discard;
        }
    }

    let light_dir = normalize(vec3<f32>(0.4, 0.8, 0.5));
    let diffuse = max(dot(normalize(in.normal), light_dir), 0.0);
    let shade = 0.35 + 0.65 * diffuse;
    return vec4<f32>(u.color.rgb * shade, u.color.a);
}
`

const lineShaderWGSL = `
struct LineUniforms {
    mvp: mat4x4<f32>,
};

@group(0) @binding(0) var<uniform> u: LineUniforms;

struct VertexOut {
    @builtin(position) pos: vec4<f32>,
    @location(0) color: vec4<f32>,
};

@vertex
fn vs_main(@location(0) pos: vec3<f32>, @location(1) color: vec4<f32>) -> VertexOut {
    var out: VertexOut;
    out.pos = u.mvp * vec4<f32>(pos, 1.0);
    out.color = color;
    return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    return in.color;
}
`

const labelShaderWGSL = `
struct LabelUniforms {
    mvp: mat4x4<f32>,
    color: vec4<f32>,
};

@group(0) @binding(0) var<uniform> u: LabelUniforms;
@group(0) @binding(1) var glyph_tex: texture_2d<f32>;
@group(0) @binding(2) var glyph_sampler: sampler;

struct VertexOut {
    @builtin(position) pos: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(@location(0) pos: vec3<f32>, @location(1) uv: vec2<f32>) -> VertexOut {
    var out: VertexOut;
    out.pos = u.mvp * vec4<f32>(pos, 1.0);
    out.uv = uv;
    return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    let texel = textureSample(glyph_tex, glyph_sampler, in.uv);
    let disc = u.color.a * texel.a;
    return vec4<f32>(mix(u.color.rgb, vec3<f32>(1.0, 1.0, 1.0), texel.r * 0.9), disc);
}
`
