package opengl

// Shading model and blending values mirror engine.Shading and
// engine.Blending.

// ── Surface shaders ───────────────────────────────────────────────────────────

const surfaceVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec4 inTangent;
layout(location = 3) in vec2 inUV;
layout(location = 4) in vec4 inColor;

uniform mat4 model;
uniform mat3 normalMatrix;
uniform mat4 viewProj;
uniform mat4 lightViewProj;

out vec3 fragWorldPos;
out vec3 fragNormal;
out vec4 fragTangent;
out vec2 fragUV;
out vec4 fragColor;
out vec4 fragLightSpacePos;

void main() {
    vec4 world = model * vec4(inPosition, 1.0);
    fragWorldPos = world.xyz;
    fragNormal = normalMatrix * inNormal;
    fragTangent = vec4(normalMatrix * inTangent.xyz, inTangent.w);
    fragUV = inUV;
    fragColor = inColor;
    fragLightSpacePos = lightViewProj * world;
    gl_Position = viewProj * world;
}
` + "\x00"

const surfaceFragSrc = `
#version 410 core
in vec3 fragWorldPos;
in vec3 fragNormal;
in vec4 fragTangent;
in vec2 fragUV;
in vec4 fragColor;
in vec4 fragLightSpacePos;

out vec4 outColor;

const int SHADING_UNLIT       = 0;
const int SHADING_LIT         = 1;
const int SHADING_SUBSURFACE  = 2;
const int SHADING_CLOTH       = 3;
const int SHADING_SHADOW_ONLY = 4;

const int BLENDING_OPAQUE = 0;
const int BLENDING_FADE   = 2;

uniform int shadingModel;
uniform int blending;

uniform vec4  baseColor;
uniform float roughness;
uniform float metallic;
uniform float reflectance;
uniform float clearCoat;
uniform float clearCoatRoughness;
uniform float anisotropy;
uniform float thickness;
uniform float subsurfacePower;
uniform vec3  subsurfaceColor;
uniform vec3  sheenColor;

uniform vec3  cameraPos;
uniform float exposure;

uniform bool  hasLight;
uniform vec3  lightDir;
uniform vec3  lightColor;
uniform float lightIntensity;

uniform bool            hasShadows;
uniform bool            receiveShadows;
uniform sampler2DShadow shadowMap;
uniform float           shadowTexel;

uniform bool  hasIBL;
uniform vec3  sh[9];
uniform mat3  iblRotation;
uniform float iblIntensity;

const float PI = 3.14159265359;
const float MIN_ROUGHNESS = 0.045;

// ── Shadow ───────────────────────────────────────────────────────────────────

float calcShadow() {
    vec3 p = fragLightSpacePos.xyz / fragLightSpacePos.w;
    p = p * 0.5 + 0.5;
    if (p.z > 1.0) return 1.0;
    float shadow = 0.0;
    for (int x = -1; x <= 1; x++) {
        for (int y = -1; y <= 1; y++) {
            shadow += texture(shadowMap, vec3(p.xy + vec2(float(x), float(y)) * shadowTexel, p.z - 0.002));
        }
    }
    return shadow / 9.0;
}

// ── Indirect light ───────────────────────────────────────────────────────────

vec3 irradianceSH(vec3 n) {
    n = iblRotation * n;
    vec3 r = sh[0]
        + sh[1] * n.y
        + sh[2] * n.z
        + sh[3] * n.x
        + sh[4] * (n.y * n.x)
        + sh[5] * (n.y * n.z)
        + sh[6] * (3.0 * n.z * n.z - 1.0)
        + sh[7] * (n.z * n.x)
        + sh[8] * (n.x * n.x - n.y * n.y);
    return max(r, vec3(0.0)) * iblIntensity;
}

// ── BRDF ─────────────────────────────────────────────────────────────────────

float D_GGX(float NoH, float a) {
    float a2 = a * a;
    float f  = (NoH * a2 - NoH) * NoH + 1.0;
    return a2 / (PI * f * f);
}

float D_GGXAnisotropic(float NoH, float ToH, float BoH, float at, float ab) {
    float a2 = at * ab;
    vec3  v  = vec3(ab * ToH, at * BoH, a2 * NoH);
    float w2 = a2 / dot(v, v);
    return a2 * w2 * w2 / PI;
}

float D_Charlie(float NoH, float a) {
    float invA  = 1.0 / a;
    float sin2h = max(1.0 - NoH * NoH, 0.0078125);
    return (2.0 + invA) * pow(sin2h, invA * 0.5) / (2.0 * PI);
}

float V_SmithGGXCorrelated(float NoV, float NoL, float a) {
    float a2 = a * a;
    float lv = NoL * sqrt(NoV * NoV * (1.0 - a2) + a2);
    float ll = NoV * sqrt(NoL * NoL * (1.0 - a2) + a2);
    return 0.5 / (lv + ll);
}

float V_Kelemen(float LoH) {
    return 0.25 / max(LoH * LoH, 1e-4);
}

float V_Neubelt(float NoV, float NoL) {
    return 1.0 / (4.0 * (NoL + NoV - NoL * NoV));
}

vec3 F_Schlick(vec3 f0, float VoH) {
    float f = pow(1.0 - VoH, 5.0);
    return f + f0 * (1.0 - f);
}

float F_Schlick(float f0, float VoH) {
    return f0 + (1.0 - f0) * pow(1.0 - VoH, 5.0);
}

// ── Main ─────────────────────────────────────────────────────────────────────

void main() {
    vec4 base = baseColor * fragColor;

    if (shadingModel == SHADING_UNLIT) {
        outColor = vec4(base.rgb, blending == BLENDING_OPAQUE ? 1.0 : base.a);
        return;
    }

    float visibility = (hasShadows && receiveShadows) ? calcShadow() : 1.0;

    if (shadingModel == SHADING_SHADOW_ONLY) {
        outColor = vec4(0.0, 0.0, 0.0, 1.0 - visibility);
        return;
    }

    vec3 N = normalize(fragNormal);
    if (!gl_FrontFacing) N = -N;
    vec3  V   = normalize(cameraPos - fragWorldPos);
    float NoV = max(dot(N, V), 1e-4);
    float perceptual = clamp(roughness, MIN_ROUGHNESS, 1.0);
    float a = perceptual * perceptual;

    bool cloth = shadingModel == SHADING_CLOTH;
    vec3 diffuseColor;
    vec3 f0;
    if (cloth) {
        diffuseColor = base.rgb;
        f0 = sheenColor;
    } else {
        diffuseColor = base.rgb * (1.0 - metallic);
        f0 = base.rgb * metallic + 0.16 * reflectance * reflectance * (1.0 - metallic);
    }
    bool coated = shadingModel == SHADING_LIT && clearCoat > 0.0;
    float coatA = clamp(clearCoatRoughness, MIN_ROUGHNESS, 1.0);
    coatA *= coatA;

    vec3 diffuse  = vec3(0.0);
    vec3 specular = vec3(0.0);

    if (hasLight) {
        vec3  L   = normalize(-lightDir);
        vec3  H   = normalize(V + L);
        float NoL = clamp(dot(N, L), 0.0, 1.0);
        float NoH = clamp(dot(N, H), 0.0, 1.0);
        float LoH = clamp(dot(L, H), 0.0, 1.0);
        vec3  radiance = lightColor * lightIntensity * visibility;

        if (cloth) {
            vec3 Fr = D_Charlie(NoH, a) * V_Neubelt(NoV, NoL) * f0;
            vec3 Fd = diffuseColor / PI * clamp(subsurfaceColor + NoL, 0.0, 1.0);
            diffuse  += Fd * radiance;
            specular += Fr * radiance * NoL;
        } else {
            float D;
            if (shadingModel == SHADING_LIT && anisotropy != 0.0) {
                vec3  T  = normalize(fragTangent.xyz);
                vec3  B  = cross(N, T) * fragTangent.w;
                float at = max(a * (1.0 + anisotropy), 0.001);
                float ab = max(a * (1.0 - anisotropy), 0.001);
                D = D_GGXAnisotropic(NoH, dot(T, H), dot(B, H), at, ab);
            } else {
                D = D_GGX(NoH, a);
            }
            vec3 Fr = D * V_SmithGGXCorrelated(NoV, NoL, a) * F_Schlick(f0, LoH);
            vec3 Fd = diffuseColor / PI;
            if (coated) {
                float Fc  = F_Schlick(0.04, LoH) * clearCoat;
                float Frc = D_GGX(NoH, coatA) * V_Kelemen(LoH) * Fc;
                Fd *= 1.0 - Fc;
                Fr  = Fr * (1.0 - Fc) + Frc;
            }
            diffuse  += Fd * radiance * NoL;
            specular += Fr * radiance * NoL;

            if (shadingModel == SHADING_SUBSURFACE) {
                float scatterVoH = clamp(dot(V, -L), 0.0, 1.0);
                float forward = exp2(scatterVoH * subsurfacePower - subsurfacePower);
                float back    = clamp(NoL * thickness + (1.0 - thickness), 0.0, 1.0) * 0.5;
                float sss     = mix(back, 1.0, forward) * (1.0 - thickness);
                diffuse += subsurfaceColor * (sss / PI) * lightColor * lightIntensity;
            }
        }
    }

    if (hasIBL) {
        vec3 R   = reflect(-V, N);
        vec3 Fi  = f0 + (max(vec3(1.0 - perceptual), f0) - f0) * pow(1.0 - NoV, 5.0);
        vec3 ibl = irradianceSH(N);
        vec3 d   = diffuseColor * ibl;
        vec3 s   = irradianceSH(R) * Fi * (1.0 - a);
        if (shadingModel == SHADING_SUBSURFACE) {
            d += subsurfaceColor * irradianceSH(-V) * (1.0 - thickness) * 0.5;
        }
        if (cloth) {
            d *= clamp(subsurfaceColor + 0.5, 0.0, 1.0);
        }
        if (coated) {
            float Fc = F_Schlick(0.04, NoV) * clearCoat;
            d *= 1.0 - Fc;
            s  = s * (1.0 - Fc) + irradianceSH(R) * Fc * (1.0 - coatA);
        }
        diffuse  += d;
        specular += s;
    }

    float alpha = 1.0;
    if (blending != BLENDING_OPAQUE) {
        alpha = base.a;
        // Transparent keeps its highlights; fade scales everything.
        if (blending == BLENDING_FADE) specular *= alpha;
    }
    outColor = vec4((diffuse + specular) * exposure, alpha);
}
` + "\x00"

// ── Depth shaders ─────────────────────────────────────────────────────────────

// depth-only vertex shader for the shadow map pass
const depthVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
uniform mat4 lightMVP;
void main() {
    gl_Position = lightMVP * vec4(inPosition, 1.0);
}
` + "\x00"

// depth-only fragment shader (OpenGL writes depth implicitly)
const depthFragSrc = `
#version 410 core
void main() {}
` + "\x00"
